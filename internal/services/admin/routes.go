package admin

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes регистрирует создание жалоб для всех пользователей
func (s *AdminService) SetupRoutes(api fiber.Router) {
	api.Post("/reports", s.CreateReport)
}

// SetupAdminRoutes регистрирует маршруты модерации; группа уже проверяет роль администратора
func (s *AdminService) SetupAdminRoutes(admin fiber.Router) {
	admin.Get("/reports", s.GetReports)
	admin.Patch("/reports/:id", s.UpdateReport)
	admin.Patch("/users/:id/verify", s.VerifyUser)
	admin.Patch("/users/:id/active", s.SetUserActive)
}
