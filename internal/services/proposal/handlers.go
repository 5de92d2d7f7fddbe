package proposal

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/middleware"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

// GetProposals возвращает предложения чата
func (s *ProposalService) GetProposals(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	proposals, err := s.List(ctx, middleware.CurrentUser(c), chatID, c.Query("estado"))
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"propuestas": proposals})
}

// CreateProposal создает предложение в чате
func (s *ProposalService) CreateProposal(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in Terms
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, err := s.Create(ctx, middleware.CurrentUser(c), chatID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "propuesta": p})
}

// RespondProposal отвечает на предложение
func (s *ProposalService) RespondProposal(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}
	proposalID, err := utils.ParamID(c, "pid")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in RespondInput
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	result, err := s.Respond(ctx, middleware.CurrentUser(c), chatID, proposalID, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"propuesta":       result.Proposal,
		"contrapropuesta": result.Counter,
	})
}

// CancelProposal отменяет собственное предложение
func (s *ProposalService) CancelProposal(c fiber.Ctx) error {
	chatID, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}
	proposalID, err := utils.ParamID(c, "pid")
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, err := s.Cancel(ctx, middleware.CurrentUser(c), chatID, proposalID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "propuesta": p})
}

// CreateDonationRequest создает запрос донации
func (s *ProposalService) CreateDonationRequest(c fiber.Ctx) error {
	var in DonationRequest
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	result, err := s.RequestDonation(ctx, middleware.CurrentUser(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"propuesta":      result.Proposal,
		"intercambio_id": result.ExchangeID,
		"chat_id":        result.ChatID,
	})
}

// RespondDonationRequest отвечает на запрос донации
func (s *ProposalService) RespondDonationRequest(c fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return apperr.Respond(c, err)
	}

	var in DonationResponse
	if err := utils.BindJSON(c, &in); err != nil {
		return apperr.Respond(c, err)
	}

	ctx, cancel := db.GetContext(0)
	defer cancel()

	p, err := s.RespondDonation(ctx, middleware.CurrentUser(c), id, in)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "propuesta": p})
}
