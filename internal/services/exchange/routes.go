package exchange

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API обменов; api уже защищен AuthMiddleware
func (s *ExchangeService) SetupRoutes(api fiber.Router) {
	// Группа для API обменов
	exchanges := api.Group("/exchanges")

	exchanges.Get("/", s.ListExchanges)
	exchanges.Post("/", s.CreateExchange)
	exchanges.Get("/:id", s.GetExchange)
	exchanges.Patch("/:id/status", s.UpdateExchangeStatus)

	// Валидация встречи принимается обоими методами
	exchanges.Patch("/:id/validate", s.ValidateMeeting)
	exchanges.Post("/:id/validate", s.ValidateMeeting)

	exchanges.Post("/:id/rate", s.ratings.RateHandler)
}
