// Package outbox описывает побочные эффекты переходов (системные сообщения в чат и
// уведомления) и выполняет их после фиксации транзакции.
package outbox

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

// Kind - вид побочного эффекта
type Kind int

const (
	KindChatMessage Kind = iota + 1
	KindNotification
)

// Command - один побочный эффект
type Command struct {
	Kind Kind

	// Сообщение адресуется либо чату напрямую, либо чату обмена
	ChatID     int64
	ExchangeID int64
	SenderID   int64
	Content    string
	IsAdmin    bool

	Notification *models.Notification
}

// SystemMessage - системное сообщение в чат обмена
func SystemMessage(exchangeID, senderID int64, content string) Command {
	return Command{Kind: KindChatMessage, ExchangeID: exchangeID, SenderID: senderID, Content: content}
}

// ChatMessage - системное сообщение в известный чат
func ChatMessage(chatID, senderID int64, content string) Command {
	return Command{Kind: KindChatMessage, ChatID: chatID, SenderID: senderID, Content: content}
}

// Notify - запись уведомления для пользователя
func Notify(userID int64, typ, title, message string, data map[string]any) Command {
	return Command{
		Kind: KindNotification,
		Notification: &models.Notification{
			UserID:  userID,
			Type:    typ,
			Title:   title,
			Message: message,
			Data:    data,
			Push:    true,
		},
	}
}

// Store - часть хранилища, в которую пишет диспетчер
type Store interface {
	GetChatByExchange(ctx context.Context, exchangeID int64) (*models.Chat, error)
	InsertMessage(ctx context.Context, m *models.Message) error
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// Dispatcher выполняет команды по одной; ошибка одной команды не мешает остальным
type Dispatcher struct {
	store   Store
	timeout time.Duration
}

// NewDispatcher создает Dispatcher
func NewDispatcher(store Store, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{store: store, timeout: timeout}
}

// Dispatch выполняет команды и возвращает число неудачных
func (d *Dispatcher) Dispatch(cmds []Command) int {
	failed := 0
	for _, cmd := range cmds {
		if err := d.run(cmd); err != nil {
			failed++
			log.Printf("⚠️ Побочный эффект не выполнен (kind=%d): %v", cmd.Kind, err)
		}
	}
	return failed
}

func (d *Dispatcher) run(cmd Command) error {
	// Каждая команда получает свой таймаут, запрос клиента к этому моменту уже обработан
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	switch cmd.Kind {
	case KindChatMessage:
		chatID := cmd.ChatID
		if chatID == 0 {
			chat, err := d.store.GetChatByExchange(ctx, cmd.ExchangeID)
			if errors.Is(err, db.ErrNotFound) {
				// У обмена нет чата, сообщать некуда
				return nil
			}
			if err != nil {
				return err
			}
			chatID = chat.ID
		}
		return d.store.InsertMessage(ctx, &models.Message{
			ChatID:   chatID,
			SenderID: cmd.SenderID,
			Content:  cmd.Content,
			Type:     models.MessageSystem,
			IsAdmin:  cmd.IsAdmin,
		})
	case KindNotification:
		if cmd.Notification == nil {
			return errors.New("пустое уведомление")
		}
		n := *cmd.Notification
		return d.store.InsertNotification(ctx, &n)
	default:
		return errors.New("неизвестный вид команды")
	}
}
