package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

func TestGet_FreshCountersAndBadges(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	ana := store.AddUser(models.User{FirstName: "Ana", Active: true})
	badge := store.AddBadge(models.BadgeTrusted)

	require.NoError(t, store.IncrementExchangeStats(ctx, ana.ID, 10))
	_, err := store.GrantBadge(ctx, ana.ID, badge.ID)
	require.NoError(t, err)

	p, err := NewProfileService(store).Get(ctx, &ana)
	require.NoError(t, err)
	assert.Equal(t, 1, p.User.TotalExchanges)
	assert.Equal(t, 10, p.User.EcoPoints)
	require.Len(t, p.Badges, 1)
	assert.Equal(t, models.BadgeTrusted, p.Badges[0].Name)
}
