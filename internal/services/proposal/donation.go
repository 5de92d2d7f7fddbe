package proposal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

// DonationRequest - тело POST /api/donations/request
type DonationRequest struct {
	ProductID int64  `json:"producto_id" validate:"required,gt=0"`
	Message   string `json:"mensaje" validate:"max=1000"`
}

// DonationResponse - тело PATCH /api/donations/request/:id/respond
type DonationResponse struct {
	Action       string     `json:"accion" validate:"required,oneof=aceptar rechazar"`
	MeetingDate  *time.Time `json:"fecha_encuentro"`
	MeetingPlace *string    `json:"lugar_encuentro"`
	Message      *string    `json:"mensaje"`
}

// DonationResult - созданный запрос донации
type DonationResult struct {
	Proposal   *models.Proposal `json:"propuesta"`
	ExchangeID int64            `json:"intercambio_id"`
	ChatID     int64            `json:"chat_id"`
}

// RequestDonation создает обмен и чат (если их еще нет) и запрос донации владельцу товара
func (s *ProposalService) RequestDonation(ctx context.Context, user *models.User, in DonationRequest) (*DonationResult, error) {
	product, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Producto no encontrado")
		}
		return nil, apperr.Internal("error al obtener producto", err)
	}
	if product.TransactionType != models.TransactionDonation {
		return nil, apperr.InvalidInput("El producto no está disponible para donación")
	}
	if product.OwnerID == user.ID {
		return nil, apperr.InvalidInput("No puedes solicitar tu propia donación")
	}

	result := &DonationResult{}
	var created bool
	err = s.repo.RunInTx(ctx, func(repo db.Repository) error {
		e, err := repo.FindOpenExchange(ctx, user.ID, product.OwnerID, product.ID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			if product.Publication != models.PublicationActive {
				return apperr.InvalidInput("El producto no está disponible")
			}
			e = &models.Exchange{
				ProposerID:       user.ID,
				ReceiverID:       product.OwnerID,
				OfferedProductID: product.ID,
				Status:           models.ExchangePending,
				Message:          strings.TrimSpace(in.Message),
			}
			if err := repo.CreateExchange(ctx, e); err != nil {
				return apperr.Internal("error al crear intercambio", err)
			}
		case err != nil:
			return apperr.Internal("error al buscar intercambio", err)
		}
		result.ExchangeID = e.ID

		chat, err := repo.GetChatByExchange(ctx, e.ID)
		if errors.Is(err, db.ErrNotFound) {
			chat = &models.Chat{ExchangeID: e.ID}
			err = repo.CreateChat(ctx, chat)
		}
		if err != nil {
			return apperr.Internal("error al obtener chat", err)
		}
		result.ChatID = chat.ID

		// Повторный запрос возвращает уже ожидающее предложение
		pending, err := repo.ListProposals(ctx, chat.ID, models.ProposalPending)
		if err != nil {
			return apperr.Internal("error al obtener propuestas", err)
		}
		for i := range pending {
			if pending[i].Type == models.ProposalDonation && pending[i].ProposerID == user.ID {
				result.Proposal = &pending[i]
				return nil
			}
		}

		description := strings.TrimSpace(in.Message)
		if description == "" {
			description = fmt.Sprintf("Solicitud de donación de \"%s\"", product.Title)
		}
		p := &models.Proposal{
			ChatID:      chat.ID,
			ProposerID:  user.ID,
			AddresseeID: product.OwnerID,
			Type:        models.ProposalDonation,
			Description: description,
			Status:      models.ProposalPending,
		}
		if err := repo.CreateProposal(ctx, p); err != nil {
			return apperr.Internal("error al crear solicitud", err)
		}
		result.Proposal = p
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		log.Printf("🎁 Запрос донации %d: пользователь %d, товар %d", result.Proposal.ID, user.ID, product.ID)
		text := fmt.Sprintf("%s solicitó tu donación \"%s\"", user.DisplayName(), product.Title)
		s.dispatcher.Dispatch([]outbox.Command{
			outbox.ChatMessage(result.ChatID, user.ID, text),
			outbox.Notify(product.OwnerID, models.NotifDonationRequest, "Nueva solicitud de donación", text,
				map[string]any{
					"propuesta_id":   result.Proposal.ID,
					"chat_id":        result.ChatID,
					"intercambio_id": result.ExchangeID,
					"producto_id":    product.ID,
					"actor_id":       user.ID,
					"actor_nombre":   user.DisplayName(),
				}),
		})
	}
	return result, nil
}

// RespondDonation принимает или отклоняет запрос донации; при принятии синхронизирует обмен чата
func (s *ProposalService) RespondDonation(ctx context.Context, user *models.User, proposalID int64, in DonationResponse) (*models.Proposal, error) {
	if in.Action == ActionAccept {
		if in.MeetingDate == nil || in.MeetingPlace == nil || strings.TrimSpace(*in.MeetingPlace) == "" {
			return nil, apperr.InvalidInput("La fecha y el lugar de encuentro son requeridos para aceptar")
		}
	}

	var p *models.Proposal
	var chat *models.Chat
	err := s.repo.RunInTx(ctx, func(repo db.Repository) error {
		var err error
		if p, err = lockPending(ctx, repo, proposalID, 0); err != nil {
			return err
		}
		if p.Type != models.ProposalDonation {
			return apperr.InvalidInput("La propuesta no es una solicitud de donación")
		}
		if p.AddresseeID != user.ID {
			return apperr.Forbidden("Solo el donante puede responder la solicitud")
		}
		if chat, err = getChat(ctx, repo, p.ChatID); err != nil {
			return err
		}

		now := s.now()
		p.RespondedAt = &now
		p.Response = in.Message
		if in.Action == ActionReject {
			p.Status = models.ProposalRejected
		} else {
			date := in.MeetingDate.UTC()
			place := strings.TrimSpace(*in.MeetingPlace)
			p.Status = models.ProposalAccepted
			p.MeetingDate = &date
			p.MeetingPlace = &place

			if _, err := syncExchangeMeeting(ctx, repo, chat, date, place, now); err != nil {
				return err
			}
		}

		if err := repo.UpdateProposal(ctx, p); err != nil {
			return apperr.Internal("error al actualizar solicitud", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var text string
	if p.Status == models.ProposalAccepted {
		text = fmt.Sprintf("%s aceptó la solicitud de donación. Encuentro en %s el %s",
			user.DisplayName(), *p.MeetingPlace, p.MeetingDate.Format("02/01/2006 15:04"))
	} else {
		text = fmt.Sprintf("%s rechazó la solicitud de donación", user.DisplayName())
	}
	data := proposalData(p, chat, user)
	data["estado"] = p.Status
	s.dispatcher.Dispatch([]outbox.Command{
		outbox.ChatMessage(chat.ID, user.ID, text),
		outbox.Notify(p.ProposerID, models.NotifProposalResponse, "Respuesta a tu solicitud de donación", text, data),
	})
	return p, nil
}
