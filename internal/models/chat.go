package models

import (
	"time"
)

// Типы сообщений
const (
	MessageText     = "texto"
	MessageImage    = "imagen"
	MessageLocation = "ubicacion"
	MessageSystem   = "sistema"
)

// Chat представляет чат, привязанный к обмену (1:1)
type Chat struct {
	ID            int64      `json:"chat_id"`
	ExchangeID    int64      `json:"intercambio_id"`
	LastMessageAt *time.Time `json:"ultimo_mensaje,omitempty"`
	Active        bool       `json:"activo"`
	CreatedAt     time.Time  `json:"fecha_creacion"`

	// Участники берутся из связанного обмена
	ProposerID int64 `json:"usuario_propone_id"`
	ReceiverID int64 `json:"usuario_recibe_id"`

	// Дополнительные поля для API
	Counterparty   *User  `json:"otro_usuario,omitempty"`
	ExchangeStatus string `json:"estado_intercambio,omitempty"`
	UnreadCount    int    `json:"mensajes_no_leidos"`
}

// IsParticipant проверяет доступ пользователя к чату
func (c *Chat) IsParticipant(userID int64) bool {
	return c.ProposerID == userID || c.ReceiverID == userID
}

// CounterpartyID возвращает ID собеседника
func (c *Chat) CounterpartyID(userID int64) int64 {
	if c.ProposerID == userID {
		return c.ReceiverID
	}
	return c.ProposerID
}

// Message представляет сообщение в чате
type Message struct {
	ID       int64     `json:"mensaje_id"`
	ChatID   int64     `json:"chat_id"`
	SenderID int64     `json:"usuario_id"`
	Content  string    `json:"contenido"`
	Type     string    `json:"tipo"`
	Read     bool      `json:"leido"`
	IsAdmin  bool      `json:"es_admin"`
	SentAt   time.Time `json:"fecha_envio"`
}
