package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

// Действия над предложением
const (
	ActionAccept  = "aceptar"
	ActionReject  = "rechazar"
	ActionCounter = "contraofertar"
)

// ProposalService - предложения внутри чата и запросы донаций
type ProposalService struct {
	repo       db.Repository
	dispatcher *outbox.Dispatcher
	now        func() time.Time
}

// NewProposalService создает новый экземпляр ProposalService
func NewProposalService(repo db.Repository, dispatcher *outbox.Dispatcher) *ProposalService {
	return &ProposalService{repo: repo, dispatcher: dispatcher, now: time.Now}
}

// Terms - условия предложения
type Terms struct {
	Type         string           `json:"tipo_propuesta" validate:"required,oneof=precio intercambio encuentro condiciones otro"`
	Description  string           `json:"descripcion" validate:"max=1000"`
	Price        *decimal.Decimal `json:"precio_propuesto"`
	Conditions   *string          `json:"condiciones"`
	MeetingDate  *time.Time       `json:"fecha_encuentro"`
	MeetingPlace *string          `json:"lugar_encuentro"`
}

// RespondInput - тело POST /api/chats/:id/proposals/:pid/respond
type RespondInput struct {
	Action   string  `json:"accion" validate:"required,oneof=aceptar rechazar contraofertar"`
	Response *string `json:"respuesta"`
	// Обязательно для contraofertar
	Counter *Terms `json:"contrapropuesta"`
}

// RespondResult - ответ на предложение и, для contraofertar, новое предложение
type RespondResult struct {
	Proposal *models.Proposal `json:"propuesta"`
	Counter  *models.Proposal `json:"contrapropuesta,omitempty"`
}

var typeLabels = map[string]string{
	models.ProposalPrice:      "de precio",
	models.ProposalExchange:   "de intercambio",
	models.ProposalMeeting:    "de encuentro",
	models.ProposalConditions: "de condiciones",
	models.ProposalOther:      "",
	models.ProposalDonation:   "de donación",
}

func describe(p *models.Proposal) string {
	label := "propuesta"
	if l := typeLabels[p.Type]; l != "" {
		label += " " + l
	}
	return label
}

// checkTerms проверяет поля, обязательные для типа предложения
func checkTerms(t *Terms) error {
	switch t.Type {
	case models.ProposalPrice:
		if t.Price == nil || !t.Price.IsPositive() {
			return apperr.InvalidInput("El precio propuesto debe ser mayor que 0")
		}
	case models.ProposalMeeting:
		if t.MeetingDate == nil || t.MeetingPlace == nil || strings.TrimSpace(*t.MeetingPlace) == "" {
			return apperr.InvalidInput("La fecha y el lugar de encuentro son requeridos")
		}
	}
	return nil
}

func (t *Terms) apply(p *models.Proposal) {
	p.Type = t.Type
	p.Description = strings.TrimSpace(t.Description)
	p.Price = t.Price
	p.Conditions = t.Conditions
	if t.MeetingDate != nil {
		date := t.MeetingDate.UTC()
		p.MeetingDate = &date
	}
	if t.MeetingPlace != nil {
		place := strings.TrimSpace(*t.MeetingPlace)
		p.MeetingPlace = &place
	}
}

// List возвращает предложения чата
func (s *ProposalService) List(ctx context.Context, user *models.User, chatID int64, status string) ([]models.Proposal, error) {
	if status != "" && !models.IsProposalStatus(status) {
		return nil, apperr.InvalidInput("Estado de propuesta inválido")
	}
	if _, err := participantChat(ctx, s.repo, user, chatID); err != nil {
		return nil, err
	}

	proposals, err := s.repo.ListProposals(ctx, chatID, status)
	if err != nil {
		return nil, apperr.Internal("error al obtener propuestas", err)
	}
	return proposals, nil
}

// Create создает предложение, адресованное собеседнику
func (s *ProposalService) Create(ctx context.Context, user *models.User, chatID int64, in Terms) (*models.Proposal, error) {
	if err := checkTerms(&in); err != nil {
		return nil, err
	}

	chat, err := participantChat(ctx, s.repo, user, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Active {
		return nil, apperr.Forbidden("El chat no está activo")
	}

	p := &models.Proposal{
		ChatID:      chat.ID,
		ProposerID:  user.ID,
		AddresseeID: chat.CounterpartyID(user.ID),
		Status:      models.ProposalPending,
	}
	in.apply(p)
	if err := s.repo.CreateProposal(ctx, p); err != nil {
		return nil, apperr.Internal("error al crear propuesta", err)
	}

	text := fmt.Sprintf("%s envió una %s", user.DisplayName(), describe(p))
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.ChatMessage(chat.ID, user.ID, text),
		outbox.Notify(p.AddresseeID, models.NotifNewProposal, "Nueva propuesta", text, proposalData(p, chat, user)),
	})
	return p, nil
}

// Respond принимает, отклоняет или встречно предлагает; отвечает только адресат
func (s *ProposalService) Respond(ctx context.Context, user *models.User, chatID, proposalID int64, in RespondInput) (*RespondResult, error) {
	if in.Action == ActionCounter {
		if in.Counter == nil {
			return nil, apperr.InvalidInput("La contrapropuesta es requerida")
		}
		if err := checkTerms(in.Counter); err != nil {
			return nil, err
		}
	}

	result := &RespondResult{}
	var chat *models.Chat
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if chat, err = participantChat(ctx, repo, user, chatID); err != nil {
			return err
		}

		p, err := lockPending(ctx, repo, proposalID, chatID)
		if err != nil {
			return err
		}
		if p.AddresseeID != user.ID {
			return apperr.Forbidden("Solo el destinatario puede responder la propuesta")
		}

		now := s.now()
		p.RespondedAt = &now
		p.Response = in.Response
		switch in.Action {
		case ActionAccept:
			p.Status = models.ProposalAccepted
			if p.Type == models.ProposalMeeting && p.MeetingDate != nil && p.MeetingPlace != nil {
				if _, err := syncExchangeMeeting(ctx, repo, chat, *p.MeetingDate, *p.MeetingPlace, now); err != nil {
					return err
				}
			}
		case ActionReject:
			p.Status = models.ProposalRejected
		case ActionCounter:
			p.Status = models.ProposalCountered
			counter := &models.Proposal{
				ChatID:      p.ChatID,
				ProposerID:  user.ID,
				AddresseeID: p.ProposerID,
				Status:      models.ProposalPending,
				ParentID:    &p.ID,
			}
			in.Counter.apply(counter)
			if err := repo.CreateProposal(ctx, counter); err != nil {
				return apperr.Internal("error al crear contrapropuesta", err)
			}
			result.Counter = counter
		}

		if err := repo.UpdateProposal(ctx, p); err != nil {
			return apperr.Internal("error al actualizar propuesta", err)
		}
		result.Proposal = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	p := result.Proposal
	var text string
	switch p.Status {
	case models.ProposalAccepted:
		text = fmt.Sprintf("%s aceptó la %s", user.DisplayName(), describe(p))
	case models.ProposalRejected:
		text = fmt.Sprintf("%s rechazó la %s", user.DisplayName(), describe(p))
	default:
		text = fmt.Sprintf("%s respondió con una contrapropuesta", user.DisplayName())
	}
	data := proposalData(p, chat, user)
	data["estado"] = p.Status
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.ChatMessage(chat.ID, user.ID, text),
		outbox.Notify(p.ProposerID, models.NotifProposalResponse, "Respuesta a tu propuesta", text, data),
	})
	return result, nil
}

// Cancel отменяет собственное предложение, пока на него не ответили
func (s *ProposalService) Cancel(ctx context.Context, user *models.User, chatID, proposalID int64) (*models.Proposal, error) {
	var p *models.Proposal
	var chat *models.Chat
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if chat, err = participantChat(ctx, repo, user, chatID); err != nil {
			return err
		}
		if p, err = lockPending(ctx, repo, proposalID, chatID); err != nil {
			return err
		}
		if p.ProposerID != user.ID {
			return apperr.Forbidden("Solo el autor puede cancelar la propuesta")
		}

		now := s.now()
		p.Status = models.ProposalCancelled
		p.RespondedAt = &now
		if err := repo.UpdateProposal(ctx, p); err != nil {
			return apperr.Internal("error al cancelar propuesta", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s canceló la %s", user.DisplayName(), describe(p))
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.ChatMessage(chat.ID, user.ID, text),
		outbox.Notify(p.AddresseeID, models.NotifProposalResponse, "Propuesta cancelada", text, proposalData(p, chat, user)),
	})
	return p, nil
}

func proposalData(p *models.Proposal, chat *models.Chat, actor *models.User) map[string]any {
	return map[string]any{
		"propuesta_id":   p.ID,
		"chat_id":        chat.ID,
		"intercambio_id": chat.ExchangeID,
		"tipo_propuesta": p.Type,
		"actor_id":       actor.ID,
		"actor_nombre":   actor.DisplayName(),
	}
}

// lockPending блокирует предложение чата, на которое еще не ответили
func lockPending(ctx context.Context, repo db.Repository, proposalID, chatID int64) (*models.Proposal, error) {
	p, err := repo.LockProposal(ctx, proposalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Propuesta no encontrada")
		}
		return nil, apperr.Internal("error al obtener propuesta", err)
	}
	if chatID != 0 && p.ChatID != chatID {
		return nil, apperr.NotFound("Propuesta no encontrada")
	}
	if p.Status != models.ProposalPending {
		return nil, apperr.InvalidInput(fmt.Sprintf("La propuesta ya fue respondida (%s)", p.Status))
	}
	return p, nil
}

func getChat(ctx context.Context, repo db.Repository, chatID int64) (*models.Chat, error) {
	chat, err := repo.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Chat no encontrado")
		}
		return nil, apperr.Internal("error al obtener chat", err)
	}
	return chat, nil
}

func participantChat(ctx context.Context, repo db.Repository, user *models.User, chatID int64) (*models.Chat, error) {
	chat, err := getChat(ctx, repo, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(user.ID) {
		return nil, apperr.Forbidden("No tienes acceso a este chat")
	}
	return chat, nil
}

// syncExchangeMeeting переносит встречу на обмен чата, если он еще pendiente или aceptado.
// Возвращает true, если обмен изменился.
func syncExchangeMeeting(ctx context.Context, repo db.Repository, chat *models.Chat, date time.Time, place string, now time.Time) (bool, error) {
	e, err := repo.LockExchange(ctx, chat.ExchangeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Internal("error al obtener intercambio", err)
	}
	if e.Status != models.ExchangePending && e.Status != models.ExchangeAccepted {
		return false, nil
	}

	wasPending := e.Status == models.ExchangePending
	date = date.UTC()
	e.Status = models.ExchangeAccepted
	e.MeetingDate = &date
	e.MeetingPlace = &place
	if wasPending {
		e.RespondedAt = &now
	}
	if err := repo.UpdateExchange(ctx, e); err != nil {
		return false, apperr.Internal("error al actualizar intercambio", err)
	}
	if wasPending {
		if err := repo.SetProductsPublication(ctx, e.ProductIDs(), models.PublicationReserved); err != nil {
			return false, apperr.Internal("error al actualizar productos", err)
		}
	}
	return true, nil
}
