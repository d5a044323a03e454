package auth

import (
	"context"

	"github.com/mmeshcher/bakeshop-system/internal/model"
)

type principalContextKey struct{}
type visitorContextKey struct{}

// ContextWithPrincipal сохраняет учётную запись в контексте запроса.
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext извлекает учётную запись из контекста запроса.
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	v, ok := ctx.Value(principalContextKey{}).(*model.Principal)
	if !ok || v == nil {
		return model.Principal{}, false
	}
	return *v, true
}

// ContextWithVisitorToken сохраняет токен посетителя в контексте запроса.
func ContextWithVisitorToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, visitorContextKey{}, token)
}

// VisitorTokenFromContext извлекает токен посетителя из контекста запроса.
func VisitorTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(visitorContextKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
