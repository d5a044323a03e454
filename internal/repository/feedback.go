package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/bakeshop-system/internal/ids"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// CreateIssue сохраняет обращение покупателя по заказу.
func (r *PostgresRepository) CreateIssue(ctx context.Context, issue model.Issue) (*model.Issue, error) {
	issue.ID = ids.New()
	issue.Status = model.IssueStatusOpen

	err := r.pool.QueryRow(ctx,
		`INSERT INTO issues (id, customer_id, order_id, description, status) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		issue.ID, issue.CustomerID, issue.OrderID, issue.Description, string(issue.Status),
	).Scan(&issue.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}

	return &issue, nil
}

// CreateFeedback сохраняет отзыв; customer_id отсутствует у анонимных отзывов.
func (r *PostgresRepository) CreateFeedback(ctx context.Context, fb model.Feedback) (*model.Feedback, error) {
	fb.ID = ids.New()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO feedback (id, customer_id, content) VALUES ($1, $2, $3) RETURNING created_at`,
		fb.ID, fb.CustomerID, fb.Content,
	).Scan(&fb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	return &fb, nil
}
