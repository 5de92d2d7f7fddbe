package admin

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
	"github.com/rajivgeraev/ecoswap-api/internal/services/rating"
)

// ReportInput - тело POST /api/reports
type ReportInput struct {
	ReportedUserID int64  `json:"reportado_usuario_id" validate:"required,gt=0"`
	ExchangeID     *int64 `json:"intercambio_id" validate:"omitempty,gt=0"`
	Reason         string `json:"motivo" validate:"required,max=200"`
	Description    string `json:"descripcion" validate:"max=2000"`
}

// ReviewInput - тело PATCH /api/admin/reports/:id
type ReviewInput struct {
	Status     string  `json:"estado" validate:"required,oneof=pendiente en_revision resuelto desestimado"`
	AdminNotes *string `json:"notas_admin" validate:"omitempty,max=2000"`
}

// ActiveInput - тело PATCH /api/admin/users/:id/active
type ActiveInput struct {
	Active *bool `json:"activo" validate:"required"`
}

// AdminService - жалобы пользователей и модерация
type AdminService struct {
	repo       db.Repository
	dispatcher *outbox.Dispatcher
	now        func() time.Time
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(repo db.Repository, dispatcher *outbox.Dispatcher) *AdminService {
	return &AdminService{repo: repo, dispatcher: dispatcher, now: time.Now}
}

// Report создает жалобу на другого пользователя
func (s *AdminService) Report(ctx context.Context, user *models.User, in ReportInput) (*models.Report, error) {
	if in.ReportedUserID == user.ID {
		return nil, apperr.InvalidInput("No puedes reportarte a ti mismo")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperr.InvalidInput("El motivo es requerido")
	}

	if _, err := s.repo.GetUser(ctx, in.ReportedUserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Usuario no encontrado")
		}
		return nil, apperr.Internal("error al obtener usuario", err)
	}

	if in.ExchangeID != nil {
		e, err := s.repo.GetExchange(ctx, *in.ExchangeID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, apperr.NotFound("Intercambio no encontrado")
			}
			return nil, apperr.Internal("error al obtener intercambio", err)
		}
		if !e.IsParticipant(user.ID) || !e.IsParticipant(in.ReportedUserID) {
			return nil, apperr.Forbidden("El intercambio no corresponde a los usuarios del reporte")
		}
	}

	r := &models.Report{
		ReporterID:     user.ID,
		ReportedUserID: in.ReportedUserID,
		ExchangeID:     in.ExchangeID,
		Reason:         reason,
		Description:    strings.TrimSpace(in.Description),
		Status:         models.ReportPending,
	}
	if err := s.repo.CreateReport(ctx, r); err != nil {
		return nil, apperr.Internal("error al crear reporte", err)
	}

	log.Printf("🚩 Жалоба %d: пользователь %d на пользователя %d", r.ID, user.ID, r.ReportedUserID)
	return r, nil
}

// Reports возвращает жалобы, опционально по статусу
func (s *AdminService) Reports(ctx context.Context, status string) ([]models.Report, error) {
	reports, err := s.repo.ListReports(ctx, status)
	if err != nil {
		return nil, apperr.Internal("error al obtener reportes", err)
	}
	return reports, nil
}

// Review меняет статус жалобы; закрытие фиксирует администратора и время
func (s *AdminService) Review(ctx context.Context, admin *models.User, id int64, in ReviewInput) (*models.Report, error) {
	r, err := s.repo.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Reporte no encontrado")
		}
		return nil, apperr.Internal("error al obtener reporte", err)
	}

	r.Status = in.Status
	if in.AdminNotes != nil {
		r.AdminNotes = in.AdminNotes
	}
	switch in.Status {
	case models.ReportResolved, models.ReportDismissed:
		now := s.now()
		r.ResolvedBy = &admin.ID
		r.ResolvedAt = &now
	default:
		r.ResolvedBy = nil
		r.ResolvedAt = nil
	}

	if err := s.repo.UpdateReport(ctx, r); err != nil {
		return nil, apperr.Internal("error al actualizar reporte", err)
	}

	log.Printf("🛡️ Администратор %d перевел жалобу %d в статус %s", admin.ID, r.ID, r.Status)
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.Notify(r.ReporterID, models.NotifReportUpdated, "Tu reporte fue actualizado",
			"El estado de tu reporte cambió a "+r.Status,
			map[string]any{"reporte_id": r.ID, "estado": r.Status}),
	})
	return r, nil
}

// Verify отмечает пользователя проверенным и пересчитывает insignias
func (s *AdminService) Verify(ctx context.Context, admin *models.User, userID int64) (*models.User, error) {
	var target *models.User
	var cmds []outbox.Command
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if target, err = repo.GetUser(ctx, userID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return apperr.NotFound("Usuario no encontrado")
			}
			return apperr.Internal("error al obtener usuario", err)
		}
		if err := repo.SetUserVerified(ctx, userID, true); err != nil {
			return apperr.Internal("error al verificar usuario", err)
		}
		target.Verified = true

		badgeCmds, err := rating.EvaluateBadges(ctx, repo, userID)
		if err != nil {
			return apperr.Internal("error al evaluar insignias", err)
		}
		cmds = append(cmds, badgeCmds...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Администратор %d верифицировал пользователя %d", admin.ID, userID)
	cmds = append([]outbox.Command{
		outbox.Notify(userID, models.NotifUserVerified, "¡Cuenta verificada!",
			"Tu cuenta fue verificada por el equipo de EcoSwap", map[string]any{"usuario_id": userID}),
	}, cmds...)
	s.dispatcher.Dispatch(cmds)
	return target, nil
}

// SetActive блокирует или разблокирует пользователя
func (s *AdminService) SetActive(ctx context.Context, admin *models.User, userID int64, active bool) (*models.User, error) {
	if userID == admin.ID && !active {
		return nil, apperr.InvalidInput("No puedes desactivar tu propia cuenta")
	}

	target, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Usuario no encontrado")
		}
		return nil, apperr.Internal("error al obtener usuario", err)
	}
	if err := s.repo.SetUserActive(ctx, userID, active); err != nil {
		return nil, apperr.Internal("error al actualizar usuario", err)
	}
	target.Active = active

	log.Printf("🛡️ Администратор %d изменил активность пользователя %d: %t", admin.ID, userID, active)
	return target, nil
}
