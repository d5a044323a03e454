package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

type stubLoader struct {
	principal model.Principal
	err       error
}

func (l *stubLoader) LoadPrincipal(_ context.Context, kind model.PrincipalKind, id string) (model.Principal, error) {
	if l.err != nil {
		return model.Principal{}, l.err
	}
	if l.principal.ID != id || l.principal.Kind != kind {
		return model.Principal{}, errors.New("unknown principal")
	}
	return l.principal, nil
}

func newTestSessionMiddleware(p model.Principal) *SessionMiddleware {
	sessions := auth.NewSessions("test-secret", time.Hour)
	return NewSessionMiddleware(sessions, &stubLoader{principal: p})
}

func TestSessionMiddleware_WithValidCookie(t *testing.T) {
	p := model.Principal{ID: "cust-1", Kind: model.KindCustomer, Username: "masha"}
	m := newTestSessionMiddleware(p)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		got, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			t.Fatalf("principal not in context")
		}
		if got.ID != p.ID || got.Kind != p.Kind {
			t.Fatalf("principal from context = %+v, want %+v", got, p)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/user/customer-dashboard", nil)

	if err := m.SetSessionCookie(w, p); err != nil {
		t.Fatalf("set session cookie: %v", err)
	}
	resCookies := w.Result().Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetSessionCookie")
	}
	r.AddCookie(resCookies[0])

	m.Resolve(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestSessionMiddleware_InvalidCookieIsAnonymous(t *testing.T) {
	m := newTestSessionMiddleware(model.Principal{ID: "cust-1", Kind: model.KindCustomer})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if _, ok := auth.PrincipalFromContext(r.Context()); ok {
			t.Fatalf("principal should not be in context")
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/products", nil)
	r.AddCookie(&http.Cookie{Name: "bakeshop_session", Value: "garbage-token"})

	m.Resolve(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("invalid session must not block the request")
	}
}

func TestSessionMiddleware_UnknownPrincipalIsAnonymous(t *testing.T) {
	// Cookie подписан корректно, но раздел учётных записей этот id не знает.
	sessions := auth.NewSessions("test-secret", time.Hour)
	m := NewSessionMiddleware(sessions, &stubLoader{err: errors.New("not found")})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if _, ok := auth.PrincipalFromContext(r.Context()); ok {
			t.Fatalf("principal should not be in context")
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/products", nil)
	if err := m.SetSessionCookie(w, model.Principal{ID: "ghost", Kind: model.KindCustomer}); err != nil {
		t.Fatalf("set session cookie: %v", err)
	}
	r.AddCookie(w.Result().Cookies()[0])

	m.Resolve(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("stale session must not block the request")
	}
}

func TestRequireAuthenticated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/profile/address", nil)
	w := httptest.NewRecorder()
	RequireAuthenticated(next).ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	r = httptest.NewRequest(http.MethodGet, "/profile/address", nil)
	r = r.WithContext(auth.ContextWithPrincipal(r.Context(), model.Principal{ID: "cust-1", Kind: model.KindCustomer}))
	w = httptest.NewRecorder()
	RequireAuthenticated(next).ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		principal *model.Principal
		required  model.PrincipalKind
		wantCode  int
	}{
		{
			name:     "anonymous gets 401",
			required: model.KindCustomer,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:      "wrong role gets 403",
			principal: &model.Principal{ID: "own-1", Kind: model.KindOwner},
			required:  model.KindCustomer,
			wantCode:  http.StatusForbidden,
		},
		{
			name:      "matching role passes",
			principal: &model.Principal{ID: "cust-1", Kind: model.KindCustomer},
			required:  model.KindCustomer,
			wantCode:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
			if tt.principal != nil {
				r = r.WithContext(auth.ContextWithPrincipal(r.Context(), *tt.principal))
			}

			w := httptest.NewRecorder()
			RequireRole(tt.required)(next).ServeHTTP(w, r)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
