package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// TokenValidator проверяет токен провайдера аутентификации
type TokenValidator interface {
	ExtractAuthID(tokenString string) (uuid.UUID, *utils.Claims, error)
}

// UserLookup - часть хранилища, нужная для проверки доступа
type UserLookup interface {
	GetUserByAuth(ctx context.Context, authID uuid.UUID, email string) (*models.User, error)
	ListActiveRoleNames(ctx context.Context, userID int64) ([]string, error)
}

// Gate сопоставляет токен с локальным пользователем и проверяет права
type Gate struct {
	tokens TokenValidator
	users  UserLookup
}

// NewGate создает Gate
func NewGate(tokens TokenValidator, users UserLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authenticate разбирает заголовок Authorization и возвращает активного пользователя
func (g *Gate) Authenticate(ctx context.Context, authHeader string) (*models.User, error) {
	if authHeader == "" {
		return nil, apperr.Unauthorized("Token de acceso requerido")
	}

	// Ожидаем "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return nil, apperr.Unauthorized("Formato de autorización inválido")
	}

	authID, claims, err := g.tokens.ExtractAuthID(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperr.Unauthorized("Token inválido o expirado")
	}

	user, err := g.users.GetUserByAuth(ctx, authID, claims.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Unauthorized("Usuario no encontrado")
		}
		return nil, apperr.Internal("error al buscar usuario", err)
	}

	if !user.Active {
		return nil, apperr.Forbidden("Usuario inactivo")
	}
	return user, nil
}

// IsAdmin проверяет флаг es_admin, затем активные административные роли
func (g *Gate) IsAdmin(ctx context.Context, user *models.User) (bool, error) {
	if user.IsAdmin {
		return true, nil
	}

	roles, err := g.users.ListActiveRoleNames(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		for _, admin := range models.AdminRoles {
			if role == admin {
				return true, nil
			}
		}
	}
	return false, nil
}

// RequireAdmin возвращает Forbidden, если пользователь не администратор
func (g *Gate) RequireAdmin(ctx context.Context, user *models.User) error {
	ok, err := g.IsAdmin(ctx, user)
	if err != nil {
		log.Printf("⚠️ Не удалось получить роли пользователя %d: %v", user.ID, err)
		return apperr.Internal("error al obtener roles", err)
	}
	if !ok {
		return apperr.Forbidden("Acceso denegado: se requieren privilegios de administrador")
	}
	return nil
}

// RequireParticipant проверяет, что пользователь участвует в обмене
func RequireParticipant(user *models.User, e *models.Exchange) error {
	if !e.IsParticipant(user.ID) {
		return apperr.Forbidden("No tienes acceso a este intercambio")
	}
	return nil
}
