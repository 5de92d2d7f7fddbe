package listing

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// Размер страницы каталога
const (
	defaultLimit = 20
	maxLimit     = 100
)

// Состояние товара по умолчанию
const defaultCondition = "buen_estado"

// CreateInput - тело POST /api/products
type CreateInput struct {
	Title           string   `json:"titulo" validate:"required,max=150"`
	Description     string   `json:"descripcion" validate:"max=2000"`
	Category        string   `json:"categoria" validate:"max=100"`
	Condition       string   `json:"estado" validate:"omitempty,oneof=nuevo como_nuevo buen_estado usado"`
	TransactionType string   `json:"tipo_transaccion" validate:"required,oneof=intercambio donacion"`
	Images          []string `json:"imagenes" validate:"max=10,dive,url"`
}

// ListingService представляет сервис для работы с товарами
type ListingService struct {
	repo db.Repository
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(repo db.Repository) *ListingService {
	return &ListingService{repo: repo}
}

// Create публикует новый товар пользователя
func (s *ListingService) Create(ctx context.Context, user *models.User, in CreateInput) (*models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.InvalidInput("El título es requerido")
	}

	p := &models.Product{
		OwnerID:         user.ID,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Category:        strings.TrimSpace(in.Category),
		Condition:       in.Condition,
		TransactionType: in.TransactionType,
		Publication:     models.PublicationActive,
		Images:          in.Images,
	}
	if p.Condition == "" {
		p.Condition = defaultCondition
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, apperr.Internal("error al guardar producto", err)
	}

	log.Printf("✅ Товар %d опубликован пользователем %d", p.ID, user.ID)
	return p, nil
}

// Catalog возвращает активные товары с фильтрами и пагинацией
func (s *ListingService) Catalog(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	f.Publication = models.PublicationActive
	f.OwnerID = 0
	f.Limit = clampLimit(f.Limit)

	products, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, apperr.Internal("error al obtener productos", err)
	}
	return products, nil
}

// Mine возвращает товары пользователя во всех состояниях
func (s *ListingService) Mine(ctx context.Context, user *models.User, publication string, limit, offset int) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, models.ProductFilter{
		OwnerID:     user.ID,
		Publication: publication,
		Limit:       clampLimit(limit),
		Offset:      offset,
	})
	if err != nil {
		return nil, apperr.Internal("error al obtener productos", err)
	}
	return products, nil
}

// Get возвращает товар и данные владельца
func (s *ListingService) Get(ctx context.Context, id int64) (*models.Product, *models.User, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperr.NotFound("Producto no encontrado")
		}
		return nil, nil, apperr.Internal("error al obtener producto", err)
	}

	owner, err := s.repo.GetUser(ctx, p.OwnerID)
	if err != nil {
		// Товар отдаем и без данных владельца
		log.Printf("Ошибка получения данных пользователя %d: %v", p.OwnerID, err)
		return p, nil, nil
	}
	return p, owner, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// CreateProduct обрабатывает создание нового товара
func (s *ListingService) CreateProduct(c fiber.Ctx) error {
	var in CreateInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, err := s.Create(ctx, middleware.CurrentUser(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "producto": p})
}

// GetPublicProducts возвращает публичный каталог
func (s *ListingService) GetPublicProducts(c fiber.Ctx) error {
	limit := utils.QueryInt(c, "limit", defaultLimit)
	offset := utils.QueryInt(c, "offset", 0)

	ctx, cancel := db.GetContext(0)
	defer cancel()

	products, err := s.Catalog(ctx, models.ProductFilter{
		Category:        c.Query("categoria"),
		TransactionType: c.Query("tipo_transaccion"),
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"productos": products,
		"limit":     clampLimit(limit),
		"offset":    offset,
	})
}

// GetMyProducts возвращает товары текущего пользователя
func (s *ListingService) GetMyProducts(c fiber.Ctx) error {
	limit := utils.QueryInt(c, "limit", defaultLimit)
	offset := utils.QueryInt(c, "offset", 0)

	ctx, cancel := db.GetContext(0)
	defer cancel()

	products, err := s.Mine(ctx, middleware.CurrentUser(c), c.Query("estado_publicacion"), limit, offset)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"productos": products,
		"limit":     clampLimit(limit),
		"offset":    offset,
	})
}

// GetProduct возвращает детальную информацию о товаре
func (s *ListingService) GetProduct(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, owner, err := s.Get(ctx, id)
	if err != nil {
		return apperr.Respond(c, err)
	}

	resp := fiber.Map{"producto": p}
	if owner != nil {
		resp["usuario"] = fiber.Map{
			"user_id":               owner.ID,
			"nombre":                owner.DisplayName(),
			"foto_perfil":           owner.AvatarURL,
			"calificacion_promedio": owner.AverageRating,
			"verificado":            owner.Verified,
		}
	}
	return c.JSON(resp)
}
