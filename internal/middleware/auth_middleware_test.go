package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/auth"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

func TestAuthAndAdminMiddleware(t *testing.T) {
	jwtService := utils.NewJWTService("secreto", "authenticated")
	store := memdb.New()
	gate := auth.NewGate(jwtService, store)

	userAuth, adminAuth, roleAuth := uuid.New(), uuid.New(), uuid.New()
	store.AddUser(models.User{AuthID: &userAuth, FirstName: "Ana", Active: true})
	store.AddUser(models.User{AuthID: &adminAuth, FirstName: "Admin", Active: true, IsAdmin: true})
	mod := store.AddUser(models.User{AuthID: &roleAuth, FirstName: "Mod", Active: true})
	store.AddRole(mod.ID, models.RoleModerator)

	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(gate))
	api.Get("/me", func(c fiber.Ctx) error {
		return c.SendString(CurrentUser(c).FirstName)
	})
	admin := api.Group("/admin", RequireAdmin(gate))
	admin.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	token := func(id uuid.UUID) string {
		tok, err := jwtService.GenerateToken(id, "", time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	call := func(path, authHeader string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, call("/api/me", ""))
	assert.Equal(t, http.StatusOK, call("/api/me", token(userAuth)))
	assert.Equal(t, http.StatusForbidden, call("/api/admin/ping", token(userAuth)))
	assert.Equal(t, http.StatusOK, call("/api/admin/ping", token(adminAuth)))
	assert.Equal(t, http.StatusOK, call("/api/admin/ping", token(roleAuth)))
}

func TestRequireAdmin_WithoutUser(t *testing.T) {
	store := memdb.New()
	gate := auth.NewGate(utils.NewJWTService("secreto", ""), store)

	app := fiber.New()
	reached := false
	app.Use(RequireAdmin(gate))
	app.Get("/", func(c fiber.Ctx) error {
		reached = true
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, reached)
}
