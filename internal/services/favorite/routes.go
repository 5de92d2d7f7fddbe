package favorite

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты избранного
func (s *FavoriteService) SetupRoutes(api fiber.Router) {
	api.Get("/favorites", s.GetFavorites)
	api.Post("/products/:id/favorite", s.AddToFavorites)
	api.Delete("/products/:id/favorite", s.RemoveFromFavorites)
}
