package favorite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

func TestFavorites(t *testing.T) {
	store := memdb.New()
	svc := NewFavoriteService(store)
	ctx := context.Background()
	ana := store.AddUser(models.User{FirstName: "Ana", Active: true})

	product := &models.Product{OwnerID: 99, Title: "Patinete", Publication: models.PublicationActive}
	require.NoError(t, store.CreateProduct(ctx, product))

	added, err := svc.Add(ctx, &ana, product.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(ctx, &ana, product.ID)
	require.NoError(t, err)
	assert.False(t, added)

	stored, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalLikes)

	list, err := store.ListFavoriteProducts(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := svc.Remove(ctx, &ana, product.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, &ana, product.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAdd_InactiveOrMissing(t *testing.T) {
	store := memdb.New()
	svc := NewFavoriteService(store)
	ctx := context.Background()
	ana := store.AddUser(models.User{FirstName: "Ana", Active: true})

	paused := &models.Product{OwnerID: 99, Title: "Radio", Publication: models.PublicationPaused}
	require.NoError(t, store.CreateProduct(ctx, paused))

	_, err := svc.Add(ctx, &ana, paused.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Add(ctx, &ana, 31337)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
