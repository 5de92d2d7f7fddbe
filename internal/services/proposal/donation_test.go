package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

func (f *fixture) donation(t *testing.T) *models.Product {
	t.Helper()
	p := &models.Product{OwnerID: f.luis.ID, Title: "Sofá", TransactionType: models.TransactionDonation, Publication: models.PublicationActive}
	require.NoError(t, f.store.CreateProduct(context.Background(), p))
	return p
}

func TestRequestDonation_CreatesExchangeChatAndProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.donation(t)

	res, err := f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: product.ID})
	require.NoError(t, err)

	e, err := f.store.GetExchange(ctx, res.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, f.carla.ID, e.ProposerID)
	assert.Equal(t, f.luis.ID, e.ReceiverID)
	assert.Equal(t, models.ExchangePending, e.Status)

	assert.Equal(t, models.ProposalDonation, res.Proposal.Type)
	assert.Equal(t, f.luis.ID, res.Proposal.AddresseeID)
	assert.Contains(t, res.Proposal.Description, "Sofá")

	notifs := f.store.Notifications(f.luis.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifDonationRequest, notifs[0].Type)

	again, err := f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: product.ID})
	require.NoError(t, err)
	assert.Equal(t, res.Proposal.ID, again.Proposal.ID)
	assert.Equal(t, res.ChatID, again.ChatID)
	assert.Len(t, f.store.Notifications(f.luis.ID), 1)
}

func TestRequestDonation_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.donation(t)

	_, err := f.svc.RequestDonation(ctx, &f.luis, DonationRequest{ProductID: product.ID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: f.exchange.OfferedProductID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "no es donación")

	_, err = f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: 4242})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.store.SetProductsPublication(ctx, []int64{product.ID}, models.PublicationReserved))
	_, err = f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: product.ID})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

func TestRespondDonation_Accept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.donation(t)

	res, err := f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: product.ID, Message: "Lo recojo cuando quieras"})
	require.NoError(t, err)

	_, err = f.svc.RespondDonation(ctx, &f.luis, res.Proposal.ID, DonationResponse{Action: ActionAccept})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "faltan fecha y lugar")

	date := time.Date(2025, 3, 5, 17, 30, 0, 0, time.UTC)
	place := "Parque Central"
	_, err = f.svc.RespondDonation(ctx, &f.carla, res.Proposal.ID, DonationResponse{Action: ActionAccept, MeetingDate: &date, MeetingPlace: &place})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	p, err := f.svc.RespondDonation(ctx, &f.luis, res.Proposal.ID, DonationResponse{Action: ActionAccept, MeetingDate: &date, MeetingPlace: &place})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalAccepted, p.Status)

	e, err := f.store.GetExchange(ctx, res.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangeAccepted, e.Status)
	require.NotNil(t, e.MeetingDate)
	assert.True(t, date.Equal(*e.MeetingDate))

	donated, err := f.store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublicationReserved, donated.Publication)

	types := []string{}
	for _, n := range f.store.Notifications(f.carla.ID) {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, models.NotifProposalResponse)
}

func TestRespondDonation_RejectKeepsExchange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.donation(t)

	res, err := f.svc.RequestDonation(ctx, &f.carla, DonationRequest{ProductID: product.ID})
	require.NoError(t, err)

	p, err := f.svc.RespondDonation(ctx, &f.luis, res.Proposal.ID, DonationResponse{Action: ActionReject})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, p.Status)

	e, err := f.store.GetExchange(ctx, res.ExchangeID)
	require.NoError(t, err)
	assert.Equal(t, models.ExchangePending, e.Status)
}

func TestRespondDonation_OnlyDonationProposals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, &f.ana, f.chat.ID, Terms{Type: models.ProposalOther})
	require.NoError(t, err)

	_, err = f.svc.RespondDonation(ctx, &f.luis, p.ID, DonationResponse{Action: ActionReject})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}
