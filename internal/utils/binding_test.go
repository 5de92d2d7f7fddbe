package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
)

type sample struct {
	Title  string `json:"titulo" validate:"required,max=5"`
	Status string `json:"estado" validate:"omitempty,oneof=activo pausado"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{Title: "mesa"}))

	err := ValidateStruct(&sample{})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	assert.Equal(t, "El campo title es requerido", apperr.PublicMessage(err))

	err = ValidateStruct(&sample{Title: "demasiado"})
	assert.Equal(t, "El campo title está fuera de rango", apperr.PublicMessage(err))

	err = ValidateStruct(&sample{Title: "mesa", Status: "roto"})
	assert.Equal(t, "Valor inválido para status", apperr.PublicMessage(err))
}

func TestParamsAndBinding(t *testing.T) {
	app := fiber.New()
	app.Post("/items/:id", func(c fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return apperr.Respond(c, err)
		}
		var in sample
		if err := BindJSON(c, &in); err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "limit": QueryInt(c, "limit", 20)})
	})

	send := func(path, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, send("/items/3?limit=x", `{"titulo":"mesa"}`))
	assert.Equal(t, http.StatusBadRequest, send("/items/0", `{"titulo":"mesa"}`))
	assert.Equal(t, http.StatusBadRequest, send("/items/abc", `{"titulo":"mesa"}`))
	assert.Equal(t, http.StatusBadRequest, send("/items/3", `{"titulo":`))
	assert.Equal(t, http.StatusBadRequest, send("/items/3", `{}`))
}
