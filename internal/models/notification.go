package models

import (
	"time"
)

// Типы уведомлений
const (
	NotifNewExchange        = "nuevo_intercambio"
	NotifExchangeUpdated    = "intercambio_actualizado"
	NotifExchangeValidation = "validacion_intercambio"
	NotifExchangeCompleted  = "intercambio_completado"
	NotifExchangeFailed     = "intercambio_fallido"
	NotifNewRating          = "nueva_calificacion"
	NotifBadgeEarned        = "insignia_obtenida"
	NotifNewProposal        = "nueva_propuesta"
	NotifProposalResponse   = "respuesta_propuesta"
	NotifDonationRequest    = "solicitud_donacion"
	NotifNewMessage         = "nuevo_mensaje"
	NotifUserVerified       = "usuario_verificado"
	NotifReportUpdated      = "reporte_actualizado"
)

// Notification - запись уведомления; доставкой занимается отдельная система
type Notification struct {
	ID        int64          `json:"notificacion_id"`
	UserID    int64          `json:"usuario_id"`
	Type      string         `json:"tipo"`
	Title     string         `json:"titulo"`
	Message   string         `json:"mensaje"`
	Data      map[string]any `json:"datos_adicionales,omitempty"`
	Read      bool           `json:"leida"`
	Push      bool           `json:"es_push"`
	Email     bool           `json:"es_email"`
	CreatedAt time.Time      `json:"fecha_creacion"`
}
