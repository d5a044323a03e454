// Package handler содержит HTTP-обработчики API сервиса bakeshop.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/bakeshop-system/internal/auth"
	"github.com/mmeshcher/bakeshop-system/internal/middleware"
	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterCustomer(ctx context.Context, in service.RegisterCustomerInput) (*model.Customer, error)
	Authenticate(ctx context.Context, kind model.PrincipalKind, username, password string) (model.Principal, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetOwner(ctx context.Context, id string) (*model.Owner, error)
	UpdateCustomerAddress(ctx context.Context, customerID string, addr model.Address) error

	AddToCart(ctx context.Context, owner model.CartOwner, productID string, delta int32) (*model.Cart, error)
	RemoveCartLine(ctx context.Context, owner model.CartOwner, lineID string) error
	GetCartView(ctx context.Context, owner model.CartOwner) (*service.CartView, error)
	MergeVisitorCart(ctx context.Context, visitorToken, customerID string) error

	SubmitOrder(ctx context.Context, customerID string) (*model.Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	SubmitIssue(ctx context.Context, customerID, orderID, description string) (*model.Issue, error)
	SubmitFeedback(ctx context.Context, customerID *string, content string) (*model.Feedback, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	AddProduct(ctx context.Context, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, slug string, p model.Product) error
	DeleteProduct(ctx context.Context, slug string) error
}

// Handler реализует HTTP-обработчики API сервиса bakeshop.
type Handler struct {
	service  Service
	logger   *zap.Logger
	sessions *middleware.SessionMiddleware
	visitors *middleware.VisitorMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, sessions *middleware.SessionMiddleware, visitors *middleware.VisitorMiddleware) *Handler {
	return &Handler{
		service:  s,
		logger:   logger,
		sessions: sessions,
		visitors: visitors,
	}
}

// cartOwner определяет ключ корзины текущего запроса: идентификатор покупателя
// либо токен посетителя. Владельцы магазина корзин не имеют.
var errNoCartOwner = errors.New("no cart owner in request")

func cartOwner(r *http.Request) (model.CartOwner, error) {
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		if principal.Kind != model.KindCustomer {
			return model.CartOwner{}, errNoCartOwner
		}
		return model.UserCart(principal.ID), nil
	}
	if token, ok := auth.VisitorTokenFromContext(r.Context()); ok {
		return model.VisitorCart(token), nil
	}
	return model.CartOwner{}, errNoCartOwner
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// centsToPrice переводит центы в денежные единицы для JSON-ответов.
func centsToPrice(cents int64) float64 {
	return float64(cents) / 100
}
