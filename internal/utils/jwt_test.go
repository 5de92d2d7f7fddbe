package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secreto", "authenticated")
	id := uuid.New()

	token, err := svc.GenerateToken(id, "ana@ecoswap.test", time.Hour)
	require.NoError(t, err)

	got, claims, err := svc.ExtractAuthID(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "ana@ecoswap.test", claims.Email)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secreto", "authenticated")

	expired, err := svc.GenerateToken(uuid.New(), "", -time.Minute)
	require.NoError(t, err)
	_, _, err = svc.ExtractAuthID(expired)
	assert.Error(t, err)

	other, err := NewJWTService("otro", "authenticated").GenerateToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)
	_, _, err = svc.ExtractAuthID(other)
	assert.Error(t, err)

	wrongAud, err := NewJWTService("secreto", "service_role").GenerateToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)
	_, _, err = svc.ExtractAuthID(wrongAud)
	assert.Error(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "no-es-uuid",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := badSubject.SignedString([]byte("secreto"))
	require.NoError(t, err)
	_, _, err = svc.ExtractAuthID(signed)
	assert.ErrorContains(t, err, "subject")
}
