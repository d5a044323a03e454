package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
)

// SubmitOrder оформляет заказ из корзины покупателя: цены берутся из каталога
// на момент оформления, позиции с удалёнными товарами пропускаются, итог
// считается один раз, корзина очищается в той же транзакции. Заказ после
// создания неизменяем и не отражает последующие изменения цен.
func (s *Service) SubmitOrder(ctx context.Context, customerID string) (*model.Order, error) {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		cart, err := s.repo.FindCart(ctx, model.UserCart(customerID))
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return nil, ErrCartEmpty
			}
			return nil, err
		}
		if cart.Empty() {
			return nil, ErrCartEmpty
		}

		productIDs := make([]string, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			productIDs = append(productIDs, l.ProductID)
		}

		products, err := s.repo.ProductsByIDs(ctx, productIDs)
		if err != nil {
			return nil, err
		}

		var lines []model.OrderLine
		var total int64
		for _, l := range cart.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				continue
			}
			lines = append(lines, model.OrderLine{
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				UnitPriceCents: p.PriceCents,
			})
			total += p.PriceCents * int64(l.Quantity)
		}

		if len(lines) == 0 {
			return nil, ErrCartEmpty
		}

		order, err := s.repo.CreateOrderAndClearCart(ctx,
			model.Order{CustomerID: customerID, Lines: lines, TotalCents: total},
			repository.CartRef{ID: cart.ID, Version: cart.Version},
		)
		if err == nil {
			return order, nil
		}
		if errors.Is(err, repository.ErrCartConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("submit order: %w", lastErr)
}

// OrdersByCustomer возвращает заказы покупателя, новые первыми.
func (s *Service) OrdersByCustomer(ctx context.Context, customerID string) ([]model.Order, error) {
	return s.repo.OrdersByCustomer(ctx, customerID)
}

// SubmitIssue создаёт обращение по заказу. Заказ должен существовать и
// принадлежать обратившемуся покупателю.
func (s *Service) SubmitIssue(ctx context.Context, customerID, orderID, description string) (*model.Issue, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderOwnership
	}

	return s.repo.CreateIssue(ctx, model.Issue{
		CustomerID:  customerID,
		OrderID:     orderID,
		Description: description,
	})
}

// SubmitFeedback сохраняет отзыв; customerID равен nil для анонимных отзывов.
func (s *Service) SubmitFeedback(ctx context.Context, customerID *string, content string) (*model.Feedback, error) {
	return s.repo.CreateFeedback(ctx, model.Feedback{
		CustomerID: customerID,
		Content:    content,
	})
}
