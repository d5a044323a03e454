package service

import (
	"context"
	"strings"

	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// ListProducts возвращает каталог товаров.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

// GetProductBySlug возвращает товар по слагу.
func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.repo.GetProductBySlug(ctx, slug)
}

// AddProduct добавляет товар в каталог; слаг строится из названия.
func (s *Service) AddProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	p.Slug = Slugify(p.Name)

	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	return &p, nil
}

// UpdateProduct обновляет товар с указанным слагом.
func (s *Service) UpdateProduct(ctx context.Context, slug string, p model.Product) error {
	return s.repo.UpdateProductBySlug(ctx, slug, p)
}

// DeleteProduct удаляет товар с указанным слагом. Ссылки на товар в корзинах
// становятся битыми и вычищаются лениво при чтении корзин.
func (s *Service) DeleteProduct(ctx context.Context, slug string) error {
	return s.repo.DeleteProductBySlug(ctx, slug)
}

// Slugify приводит название товара к виду, пригодному для URL.
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
