package cloudinary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/config"
)

func TestUploadImage_NotConfigured(t *testing.T) {
	s, err := NewCloudinaryService(&config.Config{})
	require.NoError(t, err)

	_, err = s.UploadImage(context.Background(), strings.NewReader("png"), "chat_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateUploadParams(t *testing.T) {
	disabled, err := NewCloudinaryService(&config.Config{})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/upload/params", disabled.GenerateUploadParams)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/upload/params", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	enabled, err := NewCloudinaryService(&config.Config{CloudinaryConfig: config.CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		UploadFolder: "ecoswap",
	}})
	require.NoError(t, err)

	app = fiber.New()
	app.Get("/upload/params", enabled.GenerateUploadParams)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/upload/params", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ecoswap/products", body["folder"])
	assert.Equal(t, "demo", body["cloud_name"])
	assert.NotEmpty(t, body["signature"])
	assert.NotContains(t, body, "api_secret")
}
