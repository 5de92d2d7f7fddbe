package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

// StatusChange - тело PATCH /api/exchanges/:id/status
type StatusChange struct {
	Status          string     `json:"status" validate:"required"`
	RejectionReason *string    `json:"rejectionReason"`
	MeetingPlace    *string    `json:"meetingPlace"`
	MeetingDate     *time.Time `json:"meetingDate"`
}

// Transition - результат перехода: новое состояние публикации товаров и побочные эффекты
type Transition struct {
	// Пусто, если публикацию товаров менять не нужно
	Publication string
	Commands    []outbox.Command
}

var statusLabels = map[string]string{
	models.ExchangePending:           "pendiente",
	models.ExchangeAccepted:          "aceptado",
	models.ExchangeRejected:          "rechazado",
	models.ExchangeInProgress:        "en progreso",
	models.ExchangePendingValidation: "pendiente de validación",
	models.ExchangeCompleted:         "completado",
	models.ExchangeFailed:            "fallido",
	models.ExchangeCancelled:         "cancelado",
}

// ApplyStatusChange проверяет переход и меняет e на месте; хранилище не трогает
func ApplyStatusChange(e *models.Exchange, actor *models.User, req StatusChange, now time.Time) (*Transition, error) {
	if !models.IsExchangeStatus(req.Status) {
		return nil, apperr.InvalidInput("Estado inválido")
	}
	if !e.IsParticipant(actor.ID) {
		return nil, apperr.Forbidden("No tienes acceso a este intercambio")
	}

	t := &Transition{}
	switch req.Status {
	case models.ExchangeAccepted, models.ExchangeRejected:
		if actor.ID != e.ReceiverID {
			return nil, apperr.Forbidden("Solo el receptor puede aceptar o rechazar el intercambio")
		}
		if e.Status != models.ExchangePending {
			return nil, invalidTransition(e.Status, req.Status)
		}

		if req.Status == models.ExchangeRejected {
			if req.RejectionReason == nil || strings.TrimSpace(*req.RejectionReason) == "" {
				return nil, apperr.InvalidInput("El motivo de rechazo es requerido")
			}
			reason := strings.TrimSpace(*req.RejectionReason)
			e.RejectionReason = &reason
			t.Publication = models.PublicationActive
		} else {
			hasPlace := req.MeetingPlace != nil && strings.TrimSpace(*req.MeetingPlace) != ""
			if hasPlace && req.MeetingDate == nil {
				return nil, apperr.InvalidInput("La fecha de encuentro es requerida cuando se indica el lugar")
			}
			if hasPlace {
				place := strings.TrimSpace(*req.MeetingPlace)
				e.MeetingPlace = &place
			}
			if req.MeetingDate != nil {
				date := req.MeetingDate.UTC()
				e.MeetingDate = &date
			}
			t.Publication = models.PublicationReserved
		}
		responded := now
		e.RespondedAt = &responded

	case models.ExchangeCancelled:
		if e.Status != models.ExchangePending && e.Status != models.ExchangeAccepted {
			return nil, invalidTransition(e.Status, req.Status)
		}
		t.Publication = models.PublicationActive

	case models.ExchangeInProgress:
		if e.Status != models.ExchangeAccepted {
			return nil, invalidTransition(e.Status, req.Status)
		}

	default:
		// completado, fallido и pendiente_validacion выставляет только протокол валидации
		return nil, apperr.InvalidInput("Este estado solo se alcanza mediante la validación del encuentro")
	}

	e.Status = req.Status
	t.Commands = statusCommands(e, actor)
	return t, nil
}

func invalidTransition(from, to string) error {
	return apperr.InvalidInput(fmt.Sprintf("No se puede cambiar el estado de %s a %s", from, to))
}

// statusCommands - уведомление второй стороне и системное сообщение в чат
func statusCommands(e *models.Exchange, actor *models.User) []outbox.Command {
	label := statusLabels[e.Status]
	text := fmt.Sprintf("%s cambió el estado del intercambio a %s", actor.DisplayName(), label)
	if e.Status == models.ExchangeRejected && e.RejectionReason != nil {
		text += ": " + *e.RejectionReason
	}
	if e.Status == models.ExchangeAccepted && e.MeetingPlace != nil {
		text += fmt.Sprintf(". Encuentro en %s", *e.MeetingPlace)
		if e.MeetingDate != nil {
			text += " el " + e.MeetingDate.Format("02/01/2006 15:04")
		}
	}

	return []outbox.Command{
		outbox.SystemMessage(e.ID, actor.ID, text),
		outbox.Notify(e.Counterparty(actor.ID), models.NotifExchangeUpdated, "Intercambio actualizado", text,
			map[string]any{
				"intercambio_id": e.ID,
				"estado":         e.Status,
				"actor_id":       actor.ID,
				"actor_nombre":   actor.DisplayName(),
			}),
	}
}

// Reconcile сводит валидации участников в итоговый статус обмена
func Reconcile(validations []models.ExchangeValidation) string {
	if len(validations) < 2 {
		return models.ExchangePendingValidation
	}
	for _, v := range validations {
		if !v.Successful {
			return models.ExchangeFailed
		}
	}
	return models.ExchangeCompleted
}

// CanValidate - из каких статусов принимается валидация встречи
func CanValidate(status string) bool {
	switch status {
	case models.ExchangeAccepted, models.ExchangeInProgress, models.ExchangePendingValidation:
		return true
	}
	return false
}

// Actions - флаги доступных действий, зависят только от статуса и роли
type Actions struct {
	IsProposer  bool
	IsReceiver  bool
	CanAccept   bool
	CanReject   bool
	CanCancel   bool
	CanComplete bool
}

// ActionsFor вычисляет флаги действий пользователя над обменом
func ActionsFor(e *models.Exchange, userID int64) Actions {
	a := Actions{
		IsProposer: e.ProposerID == userID,
		IsReceiver: e.ReceiverID == userID,
	}
	if !a.IsProposer && !a.IsReceiver {
		return a
	}

	a.CanAccept = a.IsReceiver && e.Status == models.ExchangePending
	a.CanReject = a.CanAccept
	a.CanCancel = e.Status == models.ExchangePending || e.Status == models.ExchangeAccepted
	a.CanComplete = CanValidate(e.Status)
	return a
}
