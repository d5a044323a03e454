// Package service реализует бизнес-логику сервиса bakeshop.
package service

import (
	"context"
	"errors"

	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
)

// ErrInvalidCredentials возвращается при любой неудачной попытке входа.
// Неизвестное имя, неверный пароль и несовпадение роли неразличимы снаружи,
// чтобы не раскрывать существование учётных записей.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCartEmpty возвращается при попытке оформить заказ c пустой корзиной.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrOrderOwnership возвращается, когда покупатель обращается к чужому заказу.
	ErrOrderOwnership = errors.New("order belongs to another customer")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateCustomer(ctx context.Context, c model.Customer) (string, error)
	GetCustomerByUsername(ctx context.Context, username string) (*model.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)
	UpdateCustomerAddress(ctx context.Context, id string, addr model.Address) error
	CreateOwner(ctx context.Context, o model.Owner) (string, error)
	GetOwnerByUsername(ctx context.Context, username string) (*model.Owner, error)
	GetOwnerByID(ctx context.Context, id string) (*model.Owner, error)

	CreateProduct(ctx context.Context, p model.Product) (string, error)
	UpdateProductBySlug(ctx context.Context, slug string, p model.Product) error
	DeleteProductBySlug(ctx context.Context, slug string) error
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ProductsByIDs(ctx context.Context, productIDs []string) (map[string]model.Product, error)

	FindCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error)
	FindOrCreateCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error)
	UpsertCartLine(ctx context.Context, owner model.CartOwner, productID string, delta int32) (*model.Cart, error)
	RemoveCartLine(ctx context.Context, owner model.CartOwner, lineID string) error
	ReplaceCartLines(ctx context.Context, ref repository.CartRef, lines []model.CartLine) error
	CommitMerge(ctx context.Context, src, dst repository.CartRef, merged []model.CartLine) error

	CreateOrderAndClearCart(ctx context.Context, order model.Order, cart repository.CartRef) (*model.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	OrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error)

	CreateIssue(ctx context.Context, issue model.Issue) (*model.Issue, error)
	CreateFeedback(ctx context.Context, fb model.Feedback) (*model.Feedback, error)
}

// Service содержит бизнес-логику сервиса bakeshop.
type Service struct {
	repo Repository
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}
