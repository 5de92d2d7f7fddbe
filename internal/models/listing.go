package models

import (
	"time"
)

// Состояния публикации товара
const (
	PublicationActive    = "activo"
	PublicationReserved  = "reservado"
	PublicationExchanged = "intercambiado"
	PublicationPaused    = "pausado"
)

// Тип сделки по товару
const (
	TransactionExchange = "intercambio"
	TransactionDonation = "donacion"
)

// Product представляет товар (producto)
type Product struct {
	ID              int64     `json:"producto_id"`
	OwnerID         int64     `json:"user_id"`
	Title           string    `json:"titulo"`
	Description     string    `json:"descripcion"`
	Category        string    `json:"categoria,omitempty"`
	Condition       string    `json:"estado"`
	TransactionType string    `json:"tipo_transaccion"`
	Publication     string    `json:"estado_publicacion"`
	Images          []string  `json:"imagenes"`
	TotalLikes      int       `json:"total_likes"`
	CreatedAt       time.Time `json:"fecha_publicacion"`
	UpdatedAt       time.Time `json:"fecha_actualizacion"`
}

// ProductFilter - фильтры публичного каталога
type ProductFilter struct {
	OwnerID         int64
	Category        string
	TransactionType string
	Publication     string
	Limit           int
	Offset          int
}
