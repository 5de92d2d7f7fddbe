package notification

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// NotificationService - входящие уведомления пользователя
type NotificationService struct {
	repo db.NotificationRepository
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(repo db.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List возвращает уведомления, новые сначала
func (s *NotificationService) List(ctx context.Context, user *models.User, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	notifications, err := s.repo.ListNotifications(ctx, user.ID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperr.Internal("error al obtener notificaciones", err)
	}
	return notifications, nil
}

// MarkRead отмечает одно уведомление прочитанным; чужое уведомление не найдено
func (s *NotificationService) MarkRead(ctx context.Context, user *models.User, id int64) error {
	ok, err := s.repo.MarkNotificationRead(ctx, user.ID, id)
	if err != nil {
		return apperr.Internal("error al actualizar notificación", err)
	}
	if !ok {
		return apperr.NotFound("Notificación no encontrada")
	}
	return nil
}

// MarkAllRead отмечает прочитанными все уведомления пользователя
func (s *NotificationService) MarkAllRead(ctx context.Context, user *models.User) (int64, error) {
	n, err := s.repo.MarkAllNotificationsRead(ctx, user.ID)
	if err != nil {
		return 0, apperr.Internal("error al actualizar notificaciones", err)
	}
	return n, nil
}

// GetNotifications обрабатывает GET /api/notifications
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	notifications, err := s.List(ctx, middleware.CurrentUser(c),
		c.Query("unread") == "true",
		utils.QueryInt(c, "limit", defaultLimit),
		utils.QueryInt(c, "offset", 0),
	)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"notificaciones": notifications, "count": len(notifications)})
}

// ReadNotification обрабатывает PATCH /api/notifications/:id/read
func (s *NotificationService) ReadNotification(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	if err := s.MarkRead(ctx, middleware.CurrentUser(c), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReadAllNotifications обрабатывает PATCH /api/notifications/read-all
func (s *NotificationService) ReadAllNotifications(c fiber.Ctx) error {
	ctx, cancel := db.GetContext(0)
	defer cancel()

	n, err := s.MarkAllRead(ctx, middleware.CurrentUser(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "actualizadas": n})
}

// SetupRoutes настраивает маршруты уведомлений
func (s *NotificationService) SetupRoutes(api fiber.Router) {
	notifications := api.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Patch("/read-all", s.ReadAllNotifications)
	notifications.Patch("/:id/read", s.ReadNotification)
}
