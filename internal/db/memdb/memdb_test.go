package memdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

func TestRunInTx_RollbackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	u := store.AddUser(models.User{FirstName: "Ana"})

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(repo db.Repository) error {
		require.NoError(t, repo.SetUserVerified(ctx, u.ID, true))
		require.NoError(t, repo.CreateProduct(ctx, &models.Product{OwnerID: u.ID, Title: "Mesa"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.Verified)

	products, err := store.ListProducts(ctx, models.ProductFilter{OwnerID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRunInTx_CommitAndNested(t *testing.T) {
	store := New()
	ctx := context.Background()
	u := store.AddUser(models.User{FirstName: "Ana"})

	err := store.RunInTx(ctx, func(repo db.Repository) error {
		return repo.RunInTx(ctx, func(inner db.Repository) error {
			return inner.IncrementExchangeStats(ctx, u.ID, 10)
		})
	})
	require.NoError(t, err)

	stored, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalExchanges)
	assert.Equal(t, 10, stored.EcoPoints)
}

func TestInsertRating_Duplicate(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.InsertRating(ctx, &models.Rating{ExchangeID: 1, RaterID: 2, RateeID: 3, Score: 5}))
	err := store.InsertRating(ctx, &models.Rating{ExchangeID: 1, RaterID: 2, RateeID: 3, Score: 1})
	assert.ErrorIs(t, err, db.ErrDuplicate)

	scores, err := store.ListRatingScores(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, scores)
}
