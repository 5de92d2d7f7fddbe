package profile

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

// ProfileService отдает профиль текущего пользователя
type ProfileService struct {
	repo db.UserRepository
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(repo db.UserRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Profile - пользователь вместе с insignias
type Profile struct {
	User   *models.User   `json:"usuario"`
	Badges []models.Badge `json:"insignias"`
}

// Get перечитывает пользователя, чтобы отдать актуальные счетчики
func (s *ProfileService) Get(ctx context.Context, user *models.User) (*Profile, error) {
	fresh, err := s.repo.GetUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("error al obtener perfil", err)
	}
	badges, err := s.repo.ListUserBadges(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal("error al obtener insignias", err)
	}
	return &Profile{User: fresh, Badges: badges}, nil
}

// GetProfile обрабатывает GET /api/profile
func (s *ProfileService) GetProfile(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, err := s.Get(ctx, middleware.CurrentUser(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

// SetupRoutes регистрирует маршрут профиля
func (s *ProfileService) SetupRoutes(api fiber.Router) {
	api.Get("/profile", s.GetProfile)
}
