package models

import (
	"time"
)

// Rating представляет оценку участника обмена (calificacion)
type Rating struct {
	ID         int64     `json:"calificacion_id"`
	ExchangeID int64     `json:"intercambio_id"`
	RaterID    int64     `json:"calificador_id"`
	RateeID    int64     `json:"calificado_id"`
	Score      int       `json:"puntuacion"`
	Comment    *string   `json:"comentario,omitempty"`
	Aspects    []string  `json:"aspectos_destacados,omitempty"`
	Recommends bool      `json:"recomendaria"`
	Public     bool      `json:"es_publica"`
	CreatedAt  time.Time `json:"fecha_calificacion"`
}

// MinScore и MaxScore - границы оценки
const (
	MinScore = 1
	MaxScore = 5
)
