package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/ecoswap-api/internal/apperr"
	"github.com/rajivgeraev/ecoswap-api/internal/db/memdb"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
	"github.com/rajivgeraev/ecoswap-api/internal/utils"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUserByAuth(ctx context.Context, authID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, authID, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) ListActiveRoleNames(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

func bearer(t *testing.T, jwtService *utils.JWTService, authID uuid.UUID, email string) string {
	t.Helper()
	token, err := jwtService.GenerateToken(authID, email, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	jwtService := utils.NewJWTService("secreto", "authenticated")
	store := memdb.New()
	gate := NewGate(jwtService, store)
	ctx := context.Background()

	linked := uuid.New()
	ana := store.AddUser(models.User{AuthID: &linked, Email: "ana@ecoswap.test", FirstName: "Ana", Active: true})
	luis := store.AddUser(models.User{Email: "luis@ecoswap.test", FirstName: "Luis", Active: true})
	store.AddUser(models.User{Email: "baja@ecoswap.test", FirstName: "Baja", Active: false})

	u, err := gate.Authenticate(ctx, bearer(t, jwtService, linked, "otro@ecoswap.test"))
	require.NoError(t, err)
	assert.Equal(t, ana.ID, u.ID)

	// Без привязанного auth_user_id пользователь находится по email
	u, err = gate.Authenticate(ctx, bearer(t, jwtService, uuid.New(), "LUIS@ecoswap.test"))
	require.NoError(t, err)
	assert.Equal(t, luis.ID, u.ID)

	_, err = gate.Authenticate(ctx, bearer(t, jwtService, uuid.New(), "baja@ecoswap.test"))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = gate.Authenticate(ctx, bearer(t, jwtService, uuid.New(), "nadie@ecoswap.test"))
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer basura"} {
		_, err = gate.Authenticate(ctx, header)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized), header)
	}
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	jwtService := utils.NewJWTService("secreto", "")
	users := &mockUsers{}
	users.On("GetUserByAuth", mock.Anything, mock.Anything, "ana@ecoswap.test").
		Return(nil, errors.New("pool cerrado"))

	_, err := NewGate(jwtService, users).Authenticate(context.Background(), bearer(t, jwtService, uuid.New(), "ana@ecoswap.test"))
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	users.AssertExpectations(t)
}

func TestIsAdmin(t *testing.T) {
	users := &mockUsers{}
	gate := NewGate(utils.NewJWTService("secreto", ""), users)
	ctx := context.Background()

	ok, err := gate.IsAdmin(ctx, &models.User{ID: 1, IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, ok)

	users.On("ListActiveRoleNames", mock.Anything, int64(2)).Return([]string{"vendedor", models.RoleModerator}, nil)
	users.On("ListActiveRoleNames", mock.Anything, int64(3)).Return([]string{"vendedor"}, nil)

	ok, err = gate.IsAdmin(ctx, &models.User{ID: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.IsAdmin(ctx, &models.User{ID: 3})
	require.NoError(t, err)
	assert.False(t, ok)

	err = gate.RequireAdmin(ctx, &models.User{ID: 3})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestRequireAdmin_RoleLookupFailure(t *testing.T) {
	users := &mockUsers{}
	gate := NewGate(utils.NewJWTService("secreto", ""), users)
	ctx := context.Background()

	users.On("ListActiveRoleNames", mock.Anything, int64(4)).Return(nil, errors.New("connection refused"))

	_, err := gate.IsAdmin(ctx, &models.User{ID: 4})
	assert.EqualError(t, err, "connection refused")

	err = gate.RequireAdmin(ctx, &models.User{ID: 4})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Equal(t, http.StatusInternalServerError, apperr.Status(err))
}

func TestRequireParticipant(t *testing.T) {
	e := &models.Exchange{ProposerID: 1, ReceiverID: 2}
	assert.NoError(t, RequireParticipant(&models.User{ID: 2}, e))
	assert.True(t, apperr.Is(RequireParticipant(&models.User{ID: 3}, e), apperr.KindForbidden))
}
