package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InvalidInput("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Internal("x", errors.New("pg")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fiber.ErrTooManyRequests, http.StatusTooManyRequests},
		{fmt.Errorf("wrapped: %w", Forbidden("x")), http.StatusForbidden},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestPublicMessage_HidesInternals(t *testing.T) {
	err := Internal("error al obtener chat", errors.New("connection refused"))
	assert.Equal(t, "error al obtener chat", PublicMessage(err))
	assert.ErrorContains(t, err, "connection refused")

	assert.Equal(t, "Error interno del servidor", PublicMessage(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestRespond(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Respond(c, NotFound("Producto no encontrado"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "Producto no encontrado", payload["error"])
}
