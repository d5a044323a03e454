package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/bakeshop-system/internal/model"
	"github.com/mmeshcher/bakeshop-system/internal/repository"
)

// retryAttempts ограничивает число повторов операций, защищённых версией корзины.
const retryAttempts = 3

// AddToCart добавляет delta к количеству товара в корзине владельца.
// Нулевая delta — no-op. Товар должен существовать в каталоге на момент
// добавления; битые ссылки возникают только при последующем удалении товара
// и вычищаются при чтении корзины.
func (s *Service) AddToCart(ctx context.Context, owner model.CartOwner, productID string, delta int32) (*model.Cart, error) {
	if delta == 0 {
		cart, err := s.repo.FindCart(ctx, owner)
		if errors.Is(err, repository.ErrCartNotFound) {
			return &model.Cart{Owner: owner}, nil
		}
		return cart, err
	}

	if delta > 0 {
		products, err := s.repo.ProductsByIDs(ctx, []string{productID})
		if err != nil {
			return nil, err
		}
		if _, ok := products[productID]; !ok {
			return nil, repository.ErrProductNotFound
		}
	}

	return s.repo.UpsertCartLine(ctx, owner, productID, delta)
}

// RemoveCartLine удаляет позицию корзины владельца.
func (s *Service) RemoveCartLine(ctx context.Context, owner model.CartOwner, lineID string) error {
	return s.repo.RemoveCartLine(ctx, owner, lineID)
}

// CartViewLine — позиция корзины, разрешённая против каталога.
type CartViewLine struct {
	LineID     string
	ProductID  string
	Name       string
	PriceCents int64
	Quantity   int32
}

// CartView — корзина, подготовленная к отображению.
type CartView struct {
	Lines []CartViewLine
	// ItemsRemoved говорит, что при этом чтении были вычищены позиции,
	// ссылавшиеся на удалённые товары.
	ItemsRemoved bool
}

// GetCartView возвращает корзину владельца, разрешённую против каталога.
// Позиции с неразрешимыми ссылками на товары молча отбрасываются, и очищенная
// корзина сохраняется не более одного раза: повторное чтение уже очищенной
// корзины ничего не меняет, а проигрыш гонки версий означает, что корзину
// почистил кто-то другой.
func (s *Service) GetCartView(ctx context.Context, owner model.CartOwner) (*CartView, error) {
	cart, err := s.repo.FindCart(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return &CartView{}, nil
		}
		return nil, err
	}
	if cart.Empty() {
		return &CartView{}, nil
	}

	productIDs := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		productIDs = append(productIDs, l.ProductID)
	}

	products, err := s.repo.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	view := &CartView{}
	kept := make([]model.CartLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		kept = append(kept, l)
		view.Lines = append(view.Lines, CartViewLine{
			LineID:     l.ID,
			ProductID:  l.ProductID,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Quantity:   l.Quantity,
		})
	}

	if len(kept) != len(cart.Lines) {
		view.ItemsRemoved = true
		err := s.repo.ReplaceCartLines(ctx, repository.CartRef{ID: cart.ID, Version: cart.Version}, kept)
		if err != nil && !errors.Is(err, repository.ErrCartConflict) && !errors.Is(err, repository.ErrCartNotFound) {
			return nil, err
		}
	}

	return view, nil
}

// MergeVisitorCart сливает корзину посетителя в корзину покупателя. Вызывается
// ровно один раз, синхронно, на пути успешного входа покупателя; владельцы
// корзин не имеют. Слияние не идемпотентно, поэтому повторная попытка слить тот
// же источник отклоняется хранилищем с ErrCartAlreadyMerged.
func (s *Service) MergeVisitorCart(ctx context.Context, visitorToken, customerID string) error {
	if visitorToken == "" {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		visitorCart, err := s.repo.FindCart(ctx, model.VisitorCart(visitorToken))
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return nil
			}
			return err
		}
		if visitorCart.Empty() {
			return nil
		}

		userCart, err := s.repo.FindOrCreateCart(ctx, model.UserCart(customerID))
		if err != nil {
			return err
		}

		merged := mergeLines(userCart.Lines, visitorCart.Lines)

		err = s.repo.CommitMerge(ctx,
			repository.CartRef{ID: visitorCart.ID, Version: visitorCart.Version},
			repository.CartRef{ID: userCart.ID, Version: userCart.Version},
			merged,
		)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrCartConflict) {
			lastErr = err
			continue
		}
		return err
	}

	return fmt.Errorf("merge visitor cart: %w", lastErr)
}

// mergeLines вычисляет результат слияния: совпадающие по товару позиции
// суммируются, остальные переносятся целиком. Для каждого товара результат
// содержит сумму количеств обеих корзин — ни одна позиция не теряется и не
// дублируется.
func mergeLines(dst, src []model.CartLine) []model.CartLine {
	merged := make([]model.CartLine, len(dst))
	copy(merged, dst)

	index := make(map[string]int, len(merged))
	for i, l := range merged {
		index[l.ProductID] = i
	}

	for _, l := range src {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
		} else {
			index[l.ProductID] = len(merged)
			merged = append(merged, l)
		}
	}

	return merged
}
