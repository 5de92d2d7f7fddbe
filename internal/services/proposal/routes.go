package proposal

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты предложений в чате и донаций
func (s *ProposalService) SetupRoutes(api fiber.Router) {
	proposals := api.Group("/chats/:id/proposals")
	proposals.Get("/", s.GetProposals)
	proposals.Post("/", s.CreateProposal)
	proposals.Post("/:pid/respond", s.RespondProposal)
	proposals.Post("/:pid/cancel", s.CancelProposal)

	donations := api.Group("/donations")
	donations.Post("/request", s.CreateDonationRequest)
	donations.Patch("/request/:id/respond", s.RespondDonationRequest)
}
