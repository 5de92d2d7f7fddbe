package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

var reviewedAt = time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

func setup() (*memdb.DB, *AdminService) {
	store := memdb.New()
	svc := NewAdminService(store, outbox.NewDispatcher(store, time.Second))
	svc.now = func() time.Time { return reviewedAt }
	return store, svc
}

func notificationTypes(store *memdb.DB, userID int64) []string {
	types := []string{}
	for _, n := range store.Notifications(userID) {
		types = append(types, n.Type)
	}
	return types
}

func TestReport_Rules(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()
	ana := store.AddUser(models.User{FirstName: "Ana", Active: true})
	luis := store.AddUser(models.User{FirstName: "Luis", Active: true})
	carla := store.AddUser(models.User{FirstName: "Carla", Active: true})
	e := store.AddExchange(models.Exchange{ProposerID: ana.ID, ReceiverID: carla.ID, OfferedProductID: 1, Status: models.ExchangeFailed})

	_, err := svc.Report(ctx, &ana, ReportInput{ReportedUserID: ana.ID, Reason: "spam"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	_, err = svc.Report(ctx, &ana, ReportInput{ReportedUserID: 9999, Reason: "spam"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Report(ctx, &ana, ReportInput{ReportedUserID: luis.ID, ExchangeID: &e.ID, Reason: "no vino"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	r, err := svc.Report(ctx, &ana, ReportInput{ReportedUserID: carla.ID, ExchangeID: &e.ID, Reason: " no vino "})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, r.Status)
	assert.Equal(t, "no vino", r.Reason)
}

func TestReview_ClosingStampsAdmin(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()
	ana := store.AddUser(models.User{FirstName: "Ana", Active: true})
	luis := store.AddUser(models.User{FirstName: "Luis", Active: true})
	admin := store.AddUser(models.User{FirstName: "Moderador", Active: true, IsAdmin: true})

	r, err := svc.Report(ctx, &ana, ReportInput{ReportedUserID: luis.ID, Reason: "lenguaje ofensivo"})
	require.NoError(t, err)

	notes := "Advertencia enviada"
	resolved, err := svc.Review(ctx, &admin, r.ID, ReviewInput{Status: models.ReportResolved, AdminNotes: &notes})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, reviewedAt.Equal(*resolved.ResolvedAt))
	assert.Contains(t, notificationTypes(store, ana.ID), models.NotifReportUpdated)

	reopened, err := svc.Review(ctx, &admin, r.ID, ReviewInput{Status: models.ReportReviewing})
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedBy)
	assert.Nil(t, reopened.ResolvedAt)
	require.NotNil(t, reopened.AdminNotes)
	assert.Equal(t, notes, *reopened.AdminNotes)

	pending, err := svc.Reports(ctx, models.ReportPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = svc.Review(ctx, &admin, 4242, ReviewInput{Status: models.ReportDismissed})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerify_GrantsTrustedBadge(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()
	store.AddBadge(models.BadgeTrusted)
	admin := store.AddUser(models.User{FirstName: "Admin", Active: true, IsAdmin: true})
	veteran := store.AddUser(models.User{FirstName: "Rosa", Active: true, TotalExchanges: 5})

	u, err := svc.Verify(ctx, &admin, veteran.ID)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	badges, err := store.ListUserBadges(ctx, veteran.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeTrusted, badges[0].Name)
	assert.Equal(t, []string{models.NotifUserVerified, models.NotifBadgeEarned}, notificationTypes(store, veteran.ID))

	_, err = svc.Verify(ctx, &admin, 9999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestVerify_ResolvedReportBlocksTrustedBadge(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()
	store.AddBadge(models.BadgeTrusted)
	admin := store.AddUser(models.User{FirstName: "Admin", Active: true, IsAdmin: true})
	reporter := store.AddUser(models.User{FirstName: "Ana", Active: true})
	veteran := store.AddUser(models.User{FirstName: "Rosa", Active: true, TotalExchanges: 8})

	r, err := svc.Report(ctx, &reporter, ReportInput{ReportedUserID: veteran.ID, Reason: "no se presentó"})
	require.NoError(t, err)
	_, err = svc.Review(ctx, &admin, r.ID, ReviewInput{Status: models.ReportResolved})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, &admin, veteran.ID)
	require.NoError(t, err)

	badges, err := store.ListUserBadges(ctx, veteran.ID)
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestSetActive(t *testing.T) {
	store, svc := setup()
	ctx := context.Background()
	admin := store.AddUser(models.User{FirstName: "Admin", Active: true, IsAdmin: true})
	luis := store.AddUser(models.User{FirstName: "Luis", Active: true})

	_, err := svc.SetActive(ctx, &admin, admin.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	u, err := svc.SetActive(ctx, &admin, luis.ID, false)
	require.NoError(t, err)
	assert.False(t, u.Active)

	stored, err := store.GetUser(ctx, luis.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
