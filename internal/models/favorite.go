package models

import (
	"time"
)

// Favorite представляет товар в избранном пользователя
type Favorite struct {
	UserID    int64     `json:"usuario_id"`
	ProductID int64     `json:"producto_id"`
	CreatedAt time.Time `json:"fecha_creacion"`
}
