package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли, дающие доступ к админке
const (
	RoleSuperAdmin      = "super_admin"
	RoleAdminValidation = "admin_validacion"
	RoleAdminSupport    = "admin_soporte"
	RoleModerator       = "moderador"
)

// AdminRoles - фиксированный список ролей администраторов
var AdminRoles = []string{RoleSuperAdmin, RoleAdminValidation, RoleAdminSupport, RoleModerator}

// User представляет пользователя (таблица usuario)
type User struct {
	ID             int64      `json:"user_id"`
	AuthID         *uuid.UUID `json:"auth_user_id,omitempty"`
	Email          string     `json:"email"`
	FirstName      string     `json:"nombre"`
	LastName       string     `json:"apellido,omitempty"`
	AvatarURL      string     `json:"foto_perfil,omitempty"`
	IsAdmin        bool       `json:"es_admin"`
	Active         bool       `json:"activo"`
	Verified       bool       `json:"verificado"`
	AverageRating  float64    `json:"calificacion_promedio"`
	TotalExchanges int        `json:"total_intercambios"`
	EcoPoints      int        `json:"eco_puntos"`
	CreatedAt      time.Time  `json:"fecha_registro"`
}

// DisplayName возвращает имя для уведомлений и сообщений
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Badge - достижение (insignia)
type Badge struct {
	ID          int64      `json:"insignia_id"`
	Name        string     `json:"nombre"`
	Description string     `json:"descripcion,omitempty"`
	Icon        string     `json:"icono,omitempty"`
	EarnedAt    *time.Time `json:"fecha_obtencion,omitempty"`
}

// Названия insignias, которые выдаются автоматически
const (
	BadgeFiveStars = "5 Stars"
	BadgeTrusted   = "Confiable"
)
