package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/config"
)

// ErrNotConfigured возвращается, если ключи Cloudinary не заданы
var ErrNotConfigured = errors.New("cloudinary не настроен")

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg config.CloudinaryConfig
	cld *cloudinary.Cloudinary
}

// NewCloudinaryService создает новый экземпляр CloudinaryService.
// Без ключей сервис создается, но загрузка возвращает ErrNotConfigured.
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	s := &CloudinaryService{cfg: cfg.CloudinaryConfig}
	if !s.cfg.Enabled() {
		return s, nil
	}

	cld, err := cloudinary.NewFromParams(s.cfg.CloudName, s.cfg.APIKey, s.cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	s.cld = cld
	return s, nil
}

// UploadImage загружает изображение в подпапку и возвращает публичный HTTPS URL
func (s *CloudinaryService) UploadImage(ctx context.Context, file io.Reader, subfolder string) (string, error) {
	if s.cld == nil {
		return "", ErrNotConfigured
	}

	folder := s.cfg.UploadFolder
	if subfolder != "" {
		folder += "/" + subfolder
	}

	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary вернул ошибку: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// GenerateUploadParams создаёт подписанные параметры для загрузки изображений товара с клиента
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	if !s.cfg.Enabled() {
		return apperr.Respond(c, apperr.Internal("almacenamiento de imágenes no configurado", ErrNotConfigured))
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	folder := s.cfg.UploadFolder + "/products"

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", folder)

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return apperr.Respond(c, apperr.Internal("error al firmar parámetros", err))
	}

	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"folder":     folder,
		"api_key":    s.cfg.APIKey,
		"cloud_name": s.cfg.CloudName,
	})
}

// SetupRoutes настраивает маршрут параметров загрузки
func (s *CloudinaryService) SetupRoutes(api fiber.Router) {
	api.Get("/upload/params", s.GenerateUploadParams)
}
