package favorite

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// FavoriteService представляет сервис для работы с избранными товарами
type FavoriteService struct {
	repo db.Repository
}

// NewFavoriteService создает новый экземпляр FavoriteService
func NewFavoriteService(repo db.Repository) *FavoriteService {
	return &FavoriteService{repo: repo}
}

// Add добавляет активный товар в избранное; повторный вызов ничего не меняет
func (s *FavoriteService) Add(ctx context.Context, user *models.User, productID int64) (bool, error) {
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, apperr.NotFound("Producto no encontrado")
		}
		return false, apperr.Internal("error al obtener producto", err)
	}
	if p.Publication != models.PublicationActive {
		return false, apperr.NotFound("Producto no encontrado o no activo")
	}

	added, err := s.repo.AddFavorite(ctx, user.ID, productID)
	if err != nil {
		return false, apperr.Internal("error al agregar a favoritos", err)
	}
	return added, nil
}

// Remove убирает товар из избранного; отсутствие записи не ошибка
func (s *FavoriteService) Remove(ctx context.Context, user *models.User, productID int64) (bool, error) {
	removed, err := s.repo.RemoveFavorite(ctx, user.ID, productID)
	if err != nil {
		return false, apperr.Internal("error al eliminar de favoritos", err)
	}
	return removed, nil
}

// AddToFavorites обрабатывает POST /api/products/:id/favorite
func (s *FavoriteService) AddToFavorites(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	added, err := s.Add(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return apperr.Respond(c, err)
	}

	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"success": true, "favorito": true, "added": added})
}

// RemoveFromFavorites обрабатывает DELETE /api/products/:id/favorite
func (s *FavoriteService) RemoveFromFavorites(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	removed, err := s.Remove(ctx, middleware.CurrentUser(c), id)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "favorito": false, "removed": removed})
}

// GetFavorites возвращает избранные товары пользователя
func (s *FavoriteService) GetFavorites(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	products, err := s.repo.ListFavoriteProducts(ctx, middleware.CurrentUser(c).ID)
	if err != nil {
		return apperr.Respond(c, apperr.Internal("error al obtener favoritos", err))
	}

	return c.JSON(fiber.Map{"favoritos": products, "total": len(products)})
}
