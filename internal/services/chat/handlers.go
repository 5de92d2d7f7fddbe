package chat

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// Максимальный размер изображения в чате
const maxImageSize = 10 << 20

// GetChats возвращает список чатов пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	chats, err := s.ListChats(ctx, middleware.CurrentUser(c))
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"chats": chats,
		"count": len(chats),
	})
}

// GetChatMessages возвращает сообщения конкретного чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	messages, err := s.Messages(ctx, middleware.CurrentUser(c), chatID,
		int64(utils.QueryInt(c, "before", 0)), utils.QueryInt(c, "limit", 50))
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage отправляет сообщение в чат
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in SendInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	msg, err := s.Send(ctx, middleware.CurrentUser(c), chatID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}

// UploadImage принимает multipart-поле file и отправляет его как сообщение
func (s *ChatService) UploadImage(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperr.Respond(c, apperr.InvalidInput("Se requiere una imagen en el campo file"))
	}
	if header.Size > maxImageSize {
		return apperr.Respond(c, apperr.InvalidInput("La imagen supera el tamaño máximo de 10MB"))
	}

	file, err := header.Open()
	if err != nil {
		return apperr.Respond(c, apperr.Internal("error al leer imagen", err))
	}
	defer file.Close()

	// Загрузка во внешнее хранилище дольше обычного запроса
	ctx, cancel := db.GetContext(30 * time.Second)
	defer cancel()

	msg, err := s.SendImage(ctx, middleware.CurrentUser(c), chatID, file)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}

// AdminSendMessage публикует сообщение администратора
func (s *ChatService) AdminSendMessage(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in struct {
		Content string `json:"contenido" validate:"required"`
	}
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	msg, err := s.SendAdminMessage(ctx, middleware.CurrentUser(c), chatID, in.Content)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}
