package models

import (
	"time"
)

// Статусы жалобы
const (
	ReportPending   = "pendiente"
	ReportReviewing = "en_revision"
	ReportResolved  = "resuelto"
	ReportDismissed = "desestimado"
)

// Report - жалоба одного пользователя на другого
type Report struct {
	ID             int64      `json:"reporte_id"`
	ReporterID     int64      `json:"reporta_usuario_id"`
	ReportedUserID int64      `json:"reportado_usuario_id"`
	ExchangeID     *int64     `json:"intercambio_id,omitempty"`
	Reason         string     `json:"motivo"`
	Description    string     `json:"descripcion,omitempty"`
	Status         string     `json:"estado"`
	AdminNotes     *string    `json:"notas_admin,omitempty"`
	ResolvedBy     *int64     `json:"resuelto_por,omitempty"`
	CreatedAt      time.Time  `json:"fecha_reporte"`
	ResolvedAt     *time.Time `json:"fecha_resolucion,omitempty"`
}
