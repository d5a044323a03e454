// Package middleware содержит HTTP middleware сервиса bakeshop.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

const sessionCookieName = "bakeshop_session"

// PrincipalLoader восстанавливает учётную запись по сохранённым в сессии (id, kind).
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, kind model.PrincipalKind, id string) (model.Principal, error)
}

// SessionMiddleware восстанавливает учётную запись из подписанного сессионного
// cookie и кладёт её в контекст запроса. Недействительная сессия не является
// ошибкой: запрос продолжается как анонимный.
type SessionMiddleware struct {
	sessions *auth.Sessions
	loader   PrincipalLoader
}

// NewSessionMiddleware создаёт middleware сессий с указанным провайдером токенов.
func NewSessionMiddleware(sessions *auth.Sessions, loader PrincipalLoader) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, loader: loader}
}

// Resolve проверяет сессионный cookie и при успехе добавляет учётную запись в
// контекст. Запись перечитывается из раздела, соответствующего её типу; если
// раздел её не знает, сессия считается недействительной и запрос остаётся анонимным.
func (m *SessionMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		id, kind, err := m.sessions.Parse(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.loader.LoadPrincipal(r.Context(), kind, id)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie выпускает сессионный токен для учётной записи и устанавливает cookie.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, p model.Principal) error {
	token, err := m.sessions.Issue(p)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.sessions.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie завершает сессию.
func (m *SessionMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuthenticated отклоняет запросы без учётной записи со статусом 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole пропускает только учётные записи указанного типа: анонимный
// запрос получает 401, запись другого типа — 403.
func RequireRole(kind model.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if principal.Kind != kind {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
