package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
)

const visitorCookieName = "visitor_token"

// VisitorMiddleware выдаёт анонимным запросам токен посетителя и переносит его
// в контекст. Токен живёт в подписанном httpOnly cookie на время браузерной
// сессии и никогда не выдаётся запросам с аутентифицированной учётной записью:
// два канала идентичности взаимоисключающи в рамках одного запроса.
type VisitorMiddleware struct {
	secretKey []byte
}

// NewVisitorMiddleware создаёт middleware токенов посетителей с указанным секретом.
func NewVisitorMiddleware(secret string) *VisitorMiddleware {
	return &VisitorMiddleware{secretKey: []byte(secret)}
}

// Ensure гарантирует анонимному запросу токен посетителя. Повторные вызовы в
// рамках одной сессии возвращают тот же токен; побочных эффектов кроме записи
// cookie нет.
func (m *VisitorMiddleware) Ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		if cookie, err := r.Cookie(visitorCookieName); err == nil {
			if token, ok := m.parse(cookie.Value); ok {
				ctx := auth.ContextWithVisitorToken(r.Context(), token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		token := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     visitorCookieName,
			Value:    m.sign(token),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := auth.ContextWithVisitorToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *VisitorMiddleware) sign(token string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(token))
	return token + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *VisitorMiddleware) parse(cookieValue string) (string, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return "", false
	}

	token := parts[0]
	if token == "" {
		return "", false
	}

	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(token))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[1]), []byte(expected)) {
		return "", false
	}

	return token, true
}
