package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/auth"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

const userKey = "user"

// AuthMiddleware создаёт middleware для проверки JWT и загрузки пользователя
func AuthMiddleware(gate *auth.Gate) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := db.GetContext(0)
		defer cancel()

		user, err := gate.Authenticate(ctx, c.Get("Authorization"))
		if err != nil {
			return apperr.Respond(c, err)
		}

		// Добавляем пользователя в контекст
		c.Locals(userKey, user)

		return c.Next()
	}
}

// RequireAdmin пропускает только администраторов; ставится после AuthMiddleware
func RequireAdmin(gate *auth.Gate) fiber.Handler {
	return func(c fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperr.Respond(c, apperr.Unauthorized("Token de acceso requerido"))
		}

		ctx, cancel := db.GetContext(0)
		defer cancel()

		if err := gate.RequireAdmin(ctx, user); err != nil {
			return apperr.Respond(c, err)
		}
		return c.Next()
	}
}

// CurrentUser возвращает пользователя, загруженного AuthMiddleware
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
