package rating

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/outbox"
)

func setup() (*memdb.DB, *RatingService) {
	store := memdb.New()
	return store, NewRatingService(store, outbox.NewDispatcher(store, time.Second))
}

func addPair(store *memdb.DB, status string) (models.User, models.User, models.Exchange) {
	a := store.AddUser(models.User{FirstName: "Ana", Active: true})
	b := store.AddUser(models.User{FirstName: "Luis", Active: true})
	e := store.AddExchange(models.Exchange{ProposerID: a.ID, ReceiverID: b.ID, OfferedProductID: 99, Status: status})
	return a, b, e
}

func countType(ns []models.Notification, typ string) int {
	n := 0
	for _, notif := range ns {
		if notif.Type == typ {
			n++
		}
	}
	return n
}

func TestRateExchange_RecordsAndNotifies(t *testing.T) {
	store, svc := setup()
	a, b, e := addPair(store, models.ExchangeCompleted)

	comment := "Muy puntual"
	r, err := svc.RateExchange(context.Background(), &a, e.ID, Input{Rating: 4, Comment: &comment, Aspects: []string{"puntualidad"}})
	require.NoError(t, err)

	assert.Equal(t, b.ID, r.RateeID)
	assert.True(t, r.Recommends)

	ratee, err := store.GetUser(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, ratee.AverageRating)
	assert.Equal(t, 1, countType(store.Notifications(b.ID), models.NotifNewRating))
}

func TestRateExchange_SecondRatingRejected(t *testing.T) {
	store, svc := setup()
	a, b, e := addPair(store, models.ExchangeCompleted)

	_, err := svc.RateExchange(context.Background(), &a, e.ID, Input{Rating: 5})
	require.NoError(t, err)

	_, err = svc.RateExchange(context.Background(), &a, e.ID, Input{Rating: 1})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	assert.Equal(t, "ya has calificado este intercambio", apperr.PublicMessage(err))

	ratee, _ := store.GetUser(context.Background(), b.ID)
	assert.Equal(t, 5.0, ratee.AverageRating)
}

func TestRateExchange_Rules(t *testing.T) {
	store, svc := setup()
	a, b, e := addPair(store, models.ExchangeAccepted)
	c := store.AddUser(models.User{FirstName: "Carla", Active: true})

	_, err := svc.RateExchange(context.Background(), &a, e.ID, Input{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "solo intercambios completados")

	_, err = svc.RateExchange(context.Background(), &c, e.ID, Input{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.RateExchange(context.Background(), &a, e.ID, Input{UserID: &b.ID, Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.RateExchange(context.Background(), &a, 12345, Input{Rating: 5})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRecord_OutOfRange(t *testing.T) {
	store, _ := setup()
	a, _, e := addPair(store, models.ExchangeCompleted)

	for _, score := range []int{0, 6} {
		_, _, err := Record(context.Background(), store, &e, Entry{RaterID: a.ID, Score: score})
		assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	}
}

// lockingStore записывает порядок блокировок и вставок оценок
type lockingStore struct {
	*memdb.DB
	calls   []string
	lockErr error
}

func (s *lockingStore) LockUser(ctx context.Context, id int64) (*models.User, error) {
	s.calls = append(s.calls, "lock:"+strconv.FormatInt(id, 10))
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	return s.DB.LockUser(ctx, id)
}

func (s *lockingStore) InsertRating(ctx context.Context, r *models.Rating) error {
	s.calls = append(s.calls, "insert")
	return s.DB.InsertRating(ctx, r)
}

func TestRecord_LocksRateeBeforeInsert(t *testing.T) {
	store, _ := setup()
	a, b, e := addPair(store, models.ExchangeCompleted)
	repo := &lockingStore{DB: store}

	_, _, err := Record(context.Background(), repo, &e, Entry{RaterID: a.ID, Score: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock:" + strconv.FormatInt(b.ID, 10), "insert"}, repo.calls)
}

func TestRecord_LockFailure(t *testing.T) {
	store, _ := setup()
	a, b, e := addPair(store, models.ExchangeCompleted)
	repo := &lockingStore{DB: store, lockErr: errors.New("connection refused")}

	_, _, err := Record(context.Background(), repo, &e, Entry{RaterID: a.ID, Score: 4})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.NotContains(t, repo.calls, "insert")

	_, err = store.GetRating(context.Background(), e.ID, a.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	ratee, _ := store.GetUser(context.Background(), b.ID)
	assert.Zero(t, ratee.AverageRating)
}

func TestFiveStarsBadgeGrantedOnce(t *testing.T) {
	store, svc := setup()
	store.AddBadge(models.BadgeFiveStars)
	star := store.AddUser(models.User{FirstName: "Estrella", Active: true})

	for i := 0; i < 11; i++ {
		rater := store.AddUser(models.User{FirstName: "Vecino", Active: true})
		e := store.AddExchange(models.Exchange{ProposerID: rater.ID, ReceiverID: star.ID, OfferedProductID: 1, Status: models.ExchangeCompleted})
		_, err := svc.RateExchange(context.Background(), &rater, e.ID, Input{Rating: 5})
		require.NoError(t, err)

		badges, err := store.ListUserBadges(context.Background(), star.ID)
		require.NoError(t, err)
		if i < 9 {
			assert.Empty(t, badges, "rating %d", i+1)
		} else {
			require.Len(t, badges, 1)
			assert.Equal(t, models.BadgeFiveStars, badges[0].Name)
		}
	}

	assert.Equal(t, 1, countType(store.Notifications(star.ID), models.NotifBadgeEarned))
}

func TestEvaluateBadges_MissingCatalogEntrySkipped(t *testing.T) {
	store, _ := setup()
	u := store.AddUser(models.User{FirstName: "Ana", Verified: true, TotalExchanges: 6})

	cmds, err := EvaluateBadges(context.Background(), store, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cmds)

	store.AddBadge(models.BadgeTrusted)
	cmds, err = EvaluateBadges(context.Background(), store, u.ID)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, models.NotifBadgeEarned, cmds[0].Notification.Type)

	cmds, err = EvaluateBadges(context.Background(), store, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestRateHandler(t *testing.T) {
	store, svc := setup()
	a, _, e := addPair(store, models.ExchangeCompleted)

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user", &a)
		return c.Next()
	})
	app.Post("/exchanges/:id/rate", svc.RateHandler)

	req := httptest.NewRequest(http.MethodPost, "/exchanges/"+strconv.FormatInt(e.ID, 10)+"/rate", strings.NewReader(`{"rating": 7}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/exchanges/"+strconv.FormatInt(e.ID, 10)+"/rate", strings.NewReader(`{"rating": 5, "comment": "Genial"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
