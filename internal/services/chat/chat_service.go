package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

// Максимальная длина текстового сообщения
const maxMessageLength = 2000

// ImageStore загружает изображения и возвращает публичный URL
type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, subfolder string) (string, error)
}

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	repo       db.Repository
	dispatcher *outbox.Dispatcher
	images     ImageStore
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(repo db.Repository, dispatcher *outbox.Dispatcher, images ImageStore) *ChatService {
	return &ChatService{repo: repo, dispatcher: dispatcher, images: images}
}

// SendInput - тело POST /api/chats/:id/messages
type SendInput struct {
	Content string `json:"contenido" validate:"required,max=2000"`
	Type    string `json:"tipo" validate:"omitempty,oneof=texto ubicacion"`
}

// ListChats возвращает чаты пользователя с данными собеседника
func (s *ChatService) ListChats(ctx context.Context, user *models.User) ([]models.Chat, error) {
	chats, err := s.repo.ListChatsForUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("error al obtener chats", err)
	}

	for i := range chats {
		other, err := s.repo.GetUser(ctx, chats[i].CounterpartyID(user.ID))
		if err != nil {
			log.Printf("Ошибка получения данных пользователя %d: %v", chats[i].CounterpartyID(user.ID), err)
			continue
		}
		chats[i].Counterparty = other
	}
	return chats, nil
}

// Messages возвращает сообщения чата и отмечает входящие прочитанными
func (s *ChatService) Messages(ctx context.Context, user *models.User, chatID, beforeID int64, limit int) ([]models.Message, error) {
	if _, err := s.participantChat(ctx, s.repo, user, chatID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, chatID, beforeID, limit)
	if err != nil {
		return nil, apperr.Internal("error al obtener mensajes", err)
	}

	// Ошибка отметки прочтения не мешает отдать сообщения
	if err := s.repo.MarkMessagesRead(ctx, chatID, user.ID); err != nil {
		log.Printf("Ошибка обновления статуса прочтения: %v", err)
	}
	return messages, nil
}

// Send отправляет текстовое сообщение или геолокацию
func (s *ChatService) Send(ctx context.Context, user *models.User, chatID int64, in SendInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.InvalidInput("El mensaje no puede estar vacío")
	}
	typ := in.Type
	if typ == "" {
		typ = models.MessageText
	}
	return s.post(ctx, user, chatID, content, typ)
}

// SendImage загружает изображение и отправляет его сообщением типа imagen
func (s *ChatService) SendImage(ctx context.Context, user *models.User, chatID int64, file io.Reader) (*models.Message, error) {
	chat, err := s.participantChat(ctx, s.repo, user, chatID)
	if err != nil {
		return nil, err
	}
	// Закрытый чат не должен оставлять загруженных файлов
	if !chat.Active {
		return nil, apperr.Forbidden("El chat no está activo")
	}

	url, err := s.images.UploadImage(ctx, file, fmt.Sprintf("chat_%d", chatID))
	if err != nil {
		return nil, apperr.Internal("error al subir imagen", err)
	}
	return s.post(ctx, user, chatID, url, models.MessageImage)
}

// SendAdminMessage публикует сообщение администратора в любой чат
func (s *ChatService) SendAdminMessage(ctx context.Context, admin *models.User, chatID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidInput("El mensaje no puede estar vacío")
	}
	if len([]rune(content)) > maxMessageLength {
		return nil, apperr.InvalidInput("El mensaje es demasiado largo")
	}

	chat, err := s.getChat(ctx, s.repo, chatID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: admin.ID,
		Content:  content,
		Type:     models.MessageText,
		IsAdmin:  true,
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("error al enviar mensaje", err)
	}

	log.Printf("🛡️ Администратор %d написал в чат %d", admin.ID, chat.ID)
	data := map[string]any{"chat_id": chat.ID, "intercambio_id": chat.ExchangeID, "mensaje_id": msg.ID}
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.Notify(chat.ProposerID, models.NotifNewMessage, "Mensaje del equipo de EcoSwap", content, data),
		outbox.Notify(chat.ReceiverID, models.NotifNewMessage, "Mensaje del equipo de EcoSwap", content, data),
	})
	return msg, nil
}

func (s *ChatService) post(ctx context.Context, user *models.User, chatID int64, content, typ string) (*models.Message, error) {
	chat, err := s.participantChat(ctx, s.repo, user, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Active {
		return nil, apperr.Forbidden("El chat no está activo")
	}

	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: user.ID,
		Content:  content,
		Type:     typ,
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("error al enviar mensaje", err)
	}

	preview := content
	if typ == models.MessageImage {
		preview = "📷 Imagen"
	} else if len([]rune(preview)) > 100 {
		preview = string([]rune(preview)[:100]) + "…"
	}

	s.dispatcher.Dispatch([]outbox.Command{
		outbox.Notify(chat.CounterpartyID(user.ID), models.NotifNewMessage,
			fmt.Sprintf("Nuevo mensaje de %s", user.DisplayName()), preview,
			map[string]any{
				"chat_id":        chat.ID,
				"intercambio_id": chat.ExchangeID,
				"mensaje_id":     msg.ID,
				"actor_id":       user.ID,
				"actor_nombre":   user.DisplayName(),
			}),
	})
	return msg, nil
}

func (s *ChatService) getChat(ctx context.Context, repo db.Repository, chatID int64) (*models.Chat, error) {
	chat, err := repo.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Chat no encontrado")
		}
		return nil, apperr.Internal("error al obtener chat", err)
	}
	return chat, nil
}

func (s *ChatService) participantChat(ctx context.Context, repo db.Repository, user *models.User, chatID int64) (*models.Chat, error) {
	chat, err := s.getChat(ctx, repo, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(user.ID) {
		return nil, apperr.Forbidden("No tienes acceso a este chat")
	}
	return chat, nil
}
