package chat

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(api fiber.Router) {
	// Группа для API чатов
	chats := api.Group("/chats")

	// Маршрут для получения всех чатов пользователя
	chats.Get("/", s.GetChats)

	// Маршруты для сообщений чата
	chats.Get("/:id/messages", s.GetChatMessages)
	chats.Post("/:id/messages", s.SendMessage)
	chats.Post("/:id/images", s.UploadImage)
}

// SetupAdminRoutes регистрирует маршруты модерации чатов
func (s *ChatService) SetupAdminRoutes(admin fiber.Router) {
	admin.Post("/chats/:id/messages", s.AdminSendMessage)
}
