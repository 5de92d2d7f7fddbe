package models

import (
	"time"
)

// Статусы обмена (intercambio)
const (
	ExchangePending           = "pendiente"
	ExchangeAccepted          = "aceptado"
	ExchangeRejected          = "rechazado"
	ExchangeInProgress        = "en_progreso"
	ExchangePendingValidation = "pendiente_validacion"
	ExchangeCompleted         = "completado"
	ExchangeFailed            = "fallido"
	ExchangeCancelled         = "cancelado"
)

var exchangeStatuses = map[string]bool{
	ExchangePending:           true,
	ExchangeAccepted:          true,
	ExchangeRejected:          true,
	ExchangeInProgress:        true,
	ExchangePendingValidation: true,
	ExchangeCompleted:         true,
	ExchangeFailed:            true,
	ExchangeCancelled:         true,
}

// IsExchangeStatus сообщает, является ли строка допустимым статусом обмена
func IsExchangeStatus(s string) bool {
	return exchangeStatuses[s]
}

// IsExchangeTerminal - обмен больше не меняет статус
func IsExchangeTerminal(s string) bool {
	switch s {
	case ExchangeRejected, ExchangeCompleted, ExchangeFailed, ExchangeCancelled:
		return true
	}
	return false
}

// Exchange представляет переговоры двух пользователей об обмене или донации
type Exchange struct {
	ID                 int64      `json:"intercambio_id"`
	ProposerID         int64      `json:"usuario_propone_id"`
	ReceiverID         int64      `json:"usuario_recibe_id"`
	OfferedProductID   int64      `json:"producto_ofrecido_id"`
	RequestedProductID *int64     `json:"producto_solicitado_id,omitempty"`
	Status             string     `json:"estado"`
	Message            string     `json:"mensaje_propuesta,omitempty"`
	MeetingPlace       *string    `json:"lugar_encuentro,omitempty"`
	MeetingDate        *time.Time `json:"fecha_encuentro,omitempty"`
	RejectionReason    *string    `json:"motivo_rechazo,omitempty"`
	ProposedAt         time.Time  `json:"fecha_propuesta"`
	RespondedAt        *time.Time `json:"fecha_respuesta,omitempty"`
	CompletedAt        *time.Time `json:"fecha_completado,omitempty"`
	UpdatedAt          time.Time  `json:"fecha_actualizacion"`
}

// IsParticipant проверяет, участвует ли пользователь в обмене
func (e *Exchange) IsParticipant(userID int64) bool {
	return e.ProposerID == userID || e.ReceiverID == userID
}

// Counterparty возвращает ID второго участника
func (e *Exchange) Counterparty(userID int64) int64 {
	if e.ProposerID == userID {
		return e.ReceiverID
	}
	return e.ProposerID
}

// ProductIDs возвращает все товары, привязанные к обмену
func (e *Exchange) ProductIDs() []int64 {
	ids := []int64{}
	if e.OfferedProductID != 0 {
		ids = append(ids, e.OfferedProductID)
	}
	if e.RequestedProductID != nil && *e.RequestedProductID != 0 {
		ids = append(ids, *e.RequestedProductID)
	}
	return ids
}

// ExchangeView - обмен с полями, вычисленными для конкретного пользователя
type ExchangeView struct {
	Exchange

	IsProposer          bool     `json:"es_proponente"`
	IsReceiver          bool     `json:"es_receptor"`
	Counterparty        *User    `json:"otro_usuario,omitempty"`
	OwnProduct          *Product `json:"mi_producto,omitempty"`
	CounterpartyProduct *Product `json:"producto_otro,omitempty"`
	ChatID              *int64   `json:"chat_id,omitempty"`
	CanAccept           bool     `json:"can_accept"`
	CanReject           bool     `json:"can_reject"`
	CanCancel           bool     `json:"can_cancel"`
	CanComplete         bool     `json:"can_complete"`
}

// ExchangeValidation - оценка встречи одним из участников
type ExchangeValidation struct {
	ID         int64     `json:"validacion_id"`
	ExchangeID int64     `json:"intercambio_id"`
	UserID     int64     `json:"usuario_id"`
	Successful bool      `json:"es_exitoso"`
	Rating     *int      `json:"calificacion,omitempty"`
	Comment    *string   `json:"comentario,omitempty"`
	Aspects    []string  `json:"aspectos_destacados,omitempty"`
	CreatedAt  time.Time `json:"fecha_validacion"`
}
