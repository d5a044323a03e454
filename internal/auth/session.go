package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmeshcher/bakeshop-system/internal/model"
)

const issuer = "bakeshop"

// ErrInvalidToken возвращается, если сессионный токен не прошёл проверку.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims — полезная нагрузка сессионного токена: идентификатор и тип
// учётной записи. Больше ничего в сессию не сериализуется; остальное
// восстанавливается повторным чтением из соответствующего раздела хранилища.
type SessionClaims struct {
	Kind model.PrincipalKind `json:"kind"`
	jwt.RegisteredClaims
}

// Sessions выпускает и проверяет подписанные сессионные токены.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions создаёт провайдер сессионных токенов с указанным секретом и временем жизни.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// TTL возвращает время жизни сессионного токена.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue подписывает токен для учётной записи алгоритмом HS256.
func (s *Sessions) Issue(p model.Principal) (string, error) {
	if p.ID == "" || !p.Kind.Valid() {
		return "", errors.New("principal is incomplete")
	}

	now := time.Now().UTC()
	claims := SessionClaims{
		Kind: p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок действия токена и возвращает (id, kind).
func (s *Sessions) Parse(token string) (string, model.PrincipalKind, error) {
	if token == "" {
		return "", "", ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" || !claims.Kind.Valid() {
		return "", "", ErrInvalidToken
	}

	return claims.Subject, claims.Kind, nil
}
