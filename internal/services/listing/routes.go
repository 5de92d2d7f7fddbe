package listing

import (
	"github.com/gofiber/fiber/v3"
)

// SetupPublicRoutes настраивает публичные маршруты каталога
func (s *ListingService) SetupPublicRoutes(app *fiber.App) {
	app.Get("/api/products", s.GetPublicProducts)
	app.Get("/api/products/:id<int>", s.GetProduct)
}

// SetupRoutes настраивает защищенные маршруты товаров
func (s *ListingService) SetupRoutes(api fiber.Router) {
	products := api.Group("/products")
	products.Post("/", s.CreateProduct)
	products.Get("/my", s.GetMyProducts)
}
