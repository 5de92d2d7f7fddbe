package exchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/auth"
	"github.com/rajivgeraev/ecoswap-api/internal/config"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
	"github.com/rajivgeraev/ecoswap-api/internal/services/rating"
)

// ExchangeService представляет сервис для работы с обменами
type ExchangeService struct {
	repo       db.Repository
	dispatcher *outbox.Dispatcher
	ratings    *rating.RatingService
	ecoPoints  int
	now        func() time.Time
}

// NewExchangeService создает новый экземпляр ExchangeService
func NewExchangeService(cfg *config.Config, repo db.Repository, dispatcher *outbox.Dispatcher, ratings *rating.RatingService) *ExchangeService {
	return &ExchangeService{
		repo:       repo,
		dispatcher: dispatcher,
		ratings:    ratings,
		ecoPoints:  cfg.EcoPointsPerExchange,
		now:        time.Now,
	}
}

// CreateInput - тело POST /api/exchanges
type CreateInput struct {
	// Опубликованный товар другого пользователя
	ProductID int64 `json:"producto_id" validate:"required,gt=0"`
	// Свой товар, предлагаемый взамен; для донаций не нужен
	OwnProductID *int64 `json:"producto_propio_id" validate:"omitempty,gt=0"`
	Message      string `json:"mensaje" validate:"max=1000"`
}

// ListInput - фильтры GET /api/exchanges
type ListInput struct {
	Status string
	Role   string
}

// ValidationInput - тело запроса валидации встречи
type ValidationInput struct {
	UserID  *int64   `json:"userId"`
	IsValid *bool    `json:"isValid" validate:"required"`
	Rating  *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string  `json:"comment"`
	Aspects []string `json:"aspects"`
}

// ValidationResult - ответ на валидацию встречи
type ValidationResult struct {
	Validation    *models.ExchangeValidation `json:"validation"`
	Exchange      *models.ExchangeView       `json:"intercambio"`
	BothValidated bool                       `json:"bothValidated"`
	NewStatus     string                     `json:"newEstado"`
}

// List возвращает обмены пользователя с вычисленными полями
func (s *ExchangeService) List(ctx context.Context, user *models.User, in ListInput) ([]models.ExchangeView, error) {
	if in.Status != "" && !models.IsExchangeStatus(in.Status) {
		return nil, apperr.InvalidInput("Estado inválido")
	}

	filter := db.ExchangeFilter{Status: in.Status}
	switch in.Role {
	case "", "todos":
	case db.RoleSent, db.RoleReceived:
		filter.Role = in.Role
	default:
		return nil, apperr.InvalidInput("Tipo inválido: use enviados, recibidos o todos")
	}

	exchanges, err := s.repo.ListExchangesForUser(ctx, user.ID, filter)
	if err != nil {
		return nil, apperr.Internal("error al obtener intercambios", err)
	}

	views := make([]models.ExchangeView, 0, len(exchanges))
	for i := range exchanges {
		v, err := s.buildView(ctx, &exchanges[i], user.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Get возвращает один обмен; доступен только участникам
func (s *ExchangeService) Get(ctx context.Context, user *models.User, id int64) (*models.ExchangeView, error) {
	e, err := s.getExchange(ctx, s.repo, id, false)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireParticipant(user, e); err != nil {
		return nil, err
	}
	return s.buildView(ctx, e, user.ID)
}

// Create создает обмен или возвращает уже открытый по тому же товару
func (s *ExchangeService) Create(ctx context.Context, user *models.User, in CreateInput) (*models.ExchangeView, bool, error) {
	product, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, false, apperr.NotFound("Producto no encontrado")
		}
		return nil, false, apperr.Internal("error al obtener producto", err)
	}
	if product.OwnerID == user.ID {
		return nil, false, apperr.InvalidInput("No puedes proponer un intercambio sobre tu propio producto")
	}

	if in.OwnProductID != nil {
		own, err := s.repo.GetProduct(ctx, *in.OwnProductID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, false, apperr.NotFound("Producto ofrecido no encontrado")
			}
			return nil, false, apperr.Internal("error al obtener producto", err)
		}
		if own.OwnerID != user.ID {
			return nil, false, apperr.Forbidden("Solo puedes ofrecer tus propios productos")
		}
		if own.Publication != models.PublicationActive {
			return nil, false, apperr.InvalidInput("Tu producto no está disponible para intercambio")
		}
	}

	var e *models.Exchange
	var created bool
	var cmds []outbox.Command
	err = s.repo.RunInTx(ctx, func(repo db.Repository) error {
		existing, err := repo.FindOpenExchange(ctx, user.ID, product.OwnerID, product.ID)
		if err == nil {
			// Открытый обмен с другим товаром не подменяется молча
			if in.OwnProductID != nil &&
				(existing.RequestedProductID == nil || *existing.RequestedProductID != *in.OwnProductID) {
				return apperr.InvalidInput("Ya tienes un intercambio abierto por este producto con otra oferta")
			}
			e = existing
			return nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return apperr.Internal("error al buscar intercambio", err)
		}

		// Новый обмен принимается только по доступному товару
		if product.Publication != models.PublicationActive {
			return apperr.InvalidInput("El producto no está disponible")
		}

		e = &models.Exchange{
			ProposerID:         user.ID,
			ReceiverID:         product.OwnerID,
			OfferedProductID:   product.ID,
			RequestedProductID: in.OwnProductID,
			Status:             models.ExchangePending,
			Message:            strings.TrimSpace(in.Message),
		}
		if err := repo.CreateExchange(ctx, e); err != nil {
			return apperr.Internal("error al crear intercambio", err)
		}

		chat := &models.Chat{ExchangeID: e.ID}
		if err := repo.CreateChat(ctx, chat); err != nil {
			return apperr.Internal("error al crear chat", err)
		}
		if e.Message != "" {
			if err := repo.InsertMessage(ctx, &models.Message{
				ChatID:   chat.ID,
				SenderID: user.ID,
				Content:  e.Message,
				Type:     models.MessageText,
			}); err != nil {
				return apperr.Internal("error al guardar mensaje", err)
			}
		}

		created = true
		cmds = append(cmds, outbox.Notify(product.OwnerID, models.NotifNewExchange, "Nueva propuesta de intercambio",
			fmt.Sprintf("%s está interesado en \"%s\"", user.DisplayName(), product.Title),
			map[string]any{
				"intercambio_id": e.ID,
				"chat_id":        chat.ID,
				"producto_id":    product.ID,
				"actor_id":       user.ID,
				"actor_nombre":   user.DisplayName(),
			}))
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Printf("✅ Создан обмен %d: %d -> %d (товар %d)", e.ID, e.ProposerID, e.ReceiverID, e.OfferedProductID)
	}
	s.dispatcher.Dispatch(cmds)

	view, err := s.buildView(ctx, e, user.ID)
	return view, created, err
}

// UpdateStatus меняет статус обмена по правилам конечного автомата
func (s *ExchangeService) UpdateStatus(ctx context.Context, user *models.User, id int64, req StatusChange) (*models.ExchangeView, error) {
	var e *models.Exchange
	var t *Transition
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if e, err = s.getExchange(ctx, repo, id, true); err != nil {
			return err
		}

		if t, err = ApplyStatusChange(e, user, req, s.now()); err != nil {
			return err
		}

		if err := repo.UpdateExchange(ctx, e); err != nil {
			return apperr.Internal("error al actualizar intercambio", err)
		}
		if t.Publication != "" {
			if err := repo.SetProductsPublication(ctx, e.ProductIDs(), t.Publication); err != nil {
				return apperr.Internal("error al actualizar productos", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔄 Обмен %d: статус %s (пользователь %d)", e.ID, e.Status, user.ID)
	s.dispatcher.Dispatch(t.Commands)
	return s.buildView(ctx, e, user.ID)
}

// Validate записывает оценку встречи и сводит валидации обоих участников
func (s *ExchangeService) Validate(ctx context.Context, user *models.User, id int64, in ValidationInput) (*ValidationResult, error) {
	if in.UserID != nil && *in.UserID != user.ID {
		return nil, apperr.Forbidden("No puedes validar en nombre de otro usuario")
	}

	var e *models.Exchange
	var validation *models.ExchangeValidation
	var validations []models.ExchangeValidation
	var cmds []outbox.Command
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if e, err = s.getExchange(ctx, repo, id, true); err != nil {
			return err
		}
		if err := auth.RequireParticipant(user, e); err != nil {
			return err
		}
		if !CanValidate(e.Status) {
			return apperr.InvalidInput(fmt.Sprintf("No se puede validar un intercambio en estado %s", e.Status))
		}

		validation = &models.ExchangeValidation{
			ExchangeID: e.ID,
			UserID:     user.ID,
			Successful: *in.IsValid,
			Rating:     in.Rating,
			Comment:    in.Comment,
			Aspects:    in.Aspects,
		}
		if err := repo.UpsertValidation(ctx, validation); err != nil {
			return apperr.Internal("error al guardar validación", err)
		}

		if validations, err = repo.ListValidations(ctx, e.ID); err != nil {
			return apperr.Internal("error al obtener validaciones", err)
		}

		cmds, err = s.settle(ctx, repo, e, user, Reconcile(validations), validations)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🤝 Обмен %d: валидация пользователя %d (успех=%t), статус %s", e.ID, user.ID, validation.Successful, e.Status)
	s.dispatcher.Dispatch(cmds)

	view, err := s.buildView(ctx, e, user.ID)
	if err != nil {
		return nil, err
	}
	return &ValidationResult{
		Validation:    validation,
		Exchange:      view,
		BothValidated: len(validations) >= 2,
		NewStatus:     e.Status,
	}, nil
}

// settle применяет итог валидаций к обмену, товарам и статистике участников
func (s *ExchangeService) settle(ctx context.Context, repo db.Repository, e *models.Exchange, actor *models.User, status string, validations []models.ExchangeValidation) ([]outbox.Command, error) {
	counterparty := e.Counterparty(actor.ID)
	base := map[string]any{
		"intercambio_id": e.ID,
		"actor_id":       actor.ID,
		"actor_nombre":   actor.DisplayName(),
	}
	var cmds []outbox.Command

	switch status {
	case models.ExchangePendingValidation:
		if e.Status != status {
			e.Status = status
			if err := repo.UpdateExchange(ctx, e); err != nil {
				return nil, apperr.Internal("error al actualizar intercambio", err)
			}
		}
		text := fmt.Sprintf("%s validó el encuentro. Falta la validación de la otra parte", actor.DisplayName())
		cmds = append(cmds,
			outbox.SystemMessage(e.ID, actor.ID, text),
			outbox.Notify(counterparty, models.NotifExchangeValidation, "Validación pendiente", text, withStatus(base, status)))

	case models.ExchangeFailed:
		e.Status = status
		if err := repo.UpdateExchange(ctx, e); err != nil {
			return nil, apperr.Internal("error al actualizar intercambio", err)
		}
		if err := repo.SetProductsPublication(ctx, e.ProductIDs(), models.PublicationActive); err != nil {
			return nil, apperr.Internal("error al actualizar productos", err)
		}
		text := "El intercambio no se pudo completar: al menos una de las partes indicó que el encuentro no fue exitoso"
		cmds = append(cmds,
			outbox.SystemMessage(e.ID, actor.ID, text),
			outbox.Notify(counterparty, models.NotifExchangeFailed, "Intercambio fallido", text, withStatus(base, status)))

	case models.ExchangeCompleted:
		completed := s.now()
		e.Status = status
		e.CompletedAt = &completed
		if err := repo.UpdateExchange(ctx, e); err != nil {
			return nil, apperr.Internal("error al actualizar intercambio", err)
		}
		if err := repo.SetProductsPublication(ctx, e.ProductIDs(), models.PublicationExchanged); err != nil {
			return nil, apperr.Internal("error al actualizar productos", err)
		}
		for _, uid := range []int64{e.ProposerID, e.ReceiverID} {
			if err := repo.IncrementExchangeStats(ctx, uid, s.ecoPoints); err != nil {
				return nil, apperr.Internal("error al actualizar estadísticas", err)
			}
		}

		text := "¡Intercambio completado! Ambas partes confirmaron el encuentro"
		cmds = append(cmds,
			outbox.SystemMessage(e.ID, actor.ID, text),
			outbox.Notify(counterparty, models.NotifExchangeCompleted, "Intercambio completado", text, withStatus(base, status)))

		// Оценки, переданные вместе с валидациями, становятся calificaciones
		for _, v := range validations {
			if v.Rating == nil {
				continue
			}
			if _, err := repo.GetRating(ctx, e.ID, v.UserID); err == nil {
				continue
			} else if !errors.Is(err, db.ErrNotFound) {
				return nil, apperr.Internal("error al obtener calificación", err)
			}
			_, ratingCmds, err := rating.Record(ctx, repo, e, rating.Entry{
				RaterID: v.UserID,
				Score:   *v.Rating,
				Comment: v.Comment,
				Aspects: v.Aspects,
			})
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, ratingCmds...)
		}

		// Счетчик обменов вырос, insignias проверяются для обоих
		for _, uid := range []int64{e.ProposerID, e.ReceiverID} {
			badgeCmds, err := rating.EvaluateBadges(ctx, repo, uid)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, badgeCmds...)
		}
	}
	return cmds, nil
}

func withStatus(base map[string]any, status string) map[string]any {
	data := make(map[string]any, len(base)+1)
	for k, v := range base {
		data[k] = v
	}
	data["estado"] = status
	return data
}

func (s *ExchangeService) getExchange(ctx context.Context, repo db.Repository, id int64, lock bool) (*models.Exchange, error) {
	var e *models.Exchange
	var err error
	if lock {
		e, err = repo.LockExchange(ctx, id)
	} else {
		e, err = repo.GetExchange(ctx, id)
	}
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Intercambio no encontrado")
		}
		return nil, apperr.Internal("error al obtener intercambio", err)
	}
	return e, nil
}

// buildView дополняет обмен данными второй стороны и флагами действий
func (s *ExchangeService) buildView(ctx context.Context, e *models.Exchange, userID int64) (*models.ExchangeView, error) {
	a := ActionsFor(e, userID)
	v := &models.ExchangeView{
		Exchange:    *e,
		IsProposer:  a.IsProposer,
		IsReceiver:  a.IsReceiver,
		CanAccept:   a.CanAccept,
		CanReject:   a.CanReject,
		CanCancel:   a.CanCancel,
		CanComplete: a.CanComplete,
	}

	other, err := s.repo.GetUser(ctx, e.Counterparty(userID))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Internal("error al obtener usuario", err)
	}
	v.Counterparty = other

	// Опубликованный товар принадлежит получателю, предложенный взамен - инициатору
	listed, err := s.product(ctx, e.OfferedProductID)
	if err != nil {
		return nil, err
	}
	var offered *models.Product
	if e.RequestedProductID != nil {
		if offered, err = s.product(ctx, *e.RequestedProductID); err != nil {
			return nil, err
		}
	}
	if a.IsReceiver {
		v.OwnProduct, v.CounterpartyProduct = listed, offered
	} else {
		v.OwnProduct, v.CounterpartyProduct = offered, listed
	}

	chat, err := s.repo.GetChatByExchange(ctx, e.ID)
	switch {
	case err == nil:
		v.ChatID = &chat.ID
	case !errors.Is(err, db.ErrNotFound):
		return nil, apperr.Internal("error al obtener chat", err)
	}
	return v, nil
}

func (s *ExchangeService) product(ctx context.Context, id int64) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("error al obtener producto", err)
	}
	return p, nil
}
