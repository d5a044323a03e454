package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

func TestVisitorMiddleware_MintsTokenForAnonymous(t *testing.T) {
	m := NewVisitorMiddleware("test-secret")

	var tokenInContext string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.VisitorTokenFromContext(r.Context())
		if !ok {
			t.Fatalf("visitor token not in context")
		}
		tokenInContext = token
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/products", nil)

	m.Ensure(next).ServeHTTP(w, r)

	if tokenInContext == "" {
		t.Fatalf("empty visitor token")
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no visitor cookie set")
	}

	token, ok := m.parse(cookies[0].Value)
	if !ok {
		t.Fatalf("visitor cookie signature invalid")
	}
	if token != tokenInContext {
		t.Fatalf("cookie token %q != context token %q", token, tokenInContext)
	}
}

func TestVisitorMiddleware_ReusesExistingToken(t *testing.T) {
	m := NewVisitorMiddleware("test-secret")

	// Первый запрос получает cookie.
	w1 := httptest.NewRecorder()
	m.Ensure(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/products", nil))
	cookie := w1.Result().Cookies()[0]
	firstToken, _ := m.parse(cookie.Value)

	// Повторный запрос с тем же cookie сохраняет токен и не выдаёт новый.
	var secondToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondToken, _ = auth.VisitorTokenFromContext(r.Context())
	})

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r2.AddCookie(cookie)

	m.Ensure(next).ServeHTTP(w2, r2)

	if secondToken != firstToken {
		t.Fatalf("token changed between requests: %q -> %q", firstToken, secondToken)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Fatalf("cookie must not be re-issued for a valid token")
	}
}

func TestVisitorMiddleware_TamperedCookieReplaced(t *testing.T) {
	m := NewVisitorMiddleware("test-secret")

	var token string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ = auth.VisitorTokenFromContext(r.Context())
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.AddCookie(&http.Cookie{Name: "visitor_token", Value: "forged.deadbeef"})

	m.Ensure(next).ServeHTTP(w, r)

	if token == "" || token == "forged" {
		t.Fatalf("forged token must be replaced, got %q", token)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatalf("fresh cookie not set after tampered one")
	}
}

func TestVisitorMiddleware_SkipsAuthenticated(t *testing.T) {
	m := NewVisitorMiddleware("test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.VisitorTokenFromContext(r.Context()); ok {
			t.Fatalf("visitor token must not be minted for an authenticated request")
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	ctx := auth.ContextWithPrincipal(r.Context(), model.Principal{ID: "cust-1", Kind: model.KindCustomer})

	m.Ensure(next).ServeHTTP(w, r.WithContext(ctx))

	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("visitor cookie must not be set for an authenticated request")
	}
}
