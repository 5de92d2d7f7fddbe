package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - содержимое токена внешнего провайдера аутентификации
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey []byte
	audience  string
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey, audience string) *JWTService {
	return &JWTService{secretKey: []byte(secretKey), audience: audience}
}

// GenerateToken создаёт JWT токен (используется в тестах и локальной разработке)
func (s *JWTService) GenerateToken(authID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   authID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken проверяет подпись, срок действия и аудиторию токена
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("токен недействителен")
	}
	return claims, nil
}

// ExtractAuthID возвращает UUID пользователя у провайдера аутентификации
func (s *JWTService) ExtractAuthID(tokenString string) (uuid.UUID, *Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, nil, err
	}

	authID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("некорректный subject в токене: %w", err)
	}
	return authID, claims, nil
}
