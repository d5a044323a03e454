package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mmeshcher/bakeshop-system/internal/ids"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// CreateCustomer создаёт нового покупателя и возвращает его идентификатор.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c model.Customer) (string, error) {
	id := ids.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO customers (id, username, email, password_hash, street, city, state, zip_code, sweetness, flavors, types, allergies)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, c.Username, c.Email, c.PasswordHash,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.ZipCode,
		c.Preferences.Sweetness, c.Preferences.Flavors, c.Preferences.Types, c.Preferences.Allergies,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%w: %s", ErrUserExists, c.Username)
		}
		return "", fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

// GetCustomerByUsername возвращает покупателя по имени учётной записи.
func (r *PostgresRepository) GetCustomerByUsername(ctx context.Context, username string) (*model.Customer, error) {
	return r.scanCustomer(r.pool.QueryRow(ctx,
		customerColumns+` WHERE username = $1`, username))
}

// GetCustomerByID возвращает покупателя по идентификатору.
func (r *PostgresRepository) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	return r.scanCustomer(r.pool.QueryRow(ctx,
		customerColumns+` WHERE id = $1`, id))
}

const customerColumns = `SELECT id, username, email, password_hash, street, city, state, zip_code, sweetness, flavors, types, allergies, created_at FROM customers`

func (r *PostgresRepository) scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.Username, &c.Email, &c.PasswordHash,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.ZipCode,
		&c.Preferences.Sweetness, &c.Preferences.Flavors, &c.Preferences.Types, &c.Preferences.Allergies,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// UpdateCustomerAddress обновляет почтовый адрес покупателя.
func (r *PostgresRepository) UpdateCustomerAddress(ctx context.Context, id string, addr model.Address) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE customers SET street = $2, city = $3, state = $4, zip_code = $5 WHERE id = $1`,
		id, addr.Street, addr.City, addr.State, addr.ZipCode,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateOwner создаёт нового владельца магазина и возвращает его идентификатор.
func (r *PostgresRepository) CreateOwner(ctx context.Context, o model.Owner) (string, error) {
	id := ids.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO owners (id, username, email, full_name, password_hash) VALUES ($1, $2, $3, $4, $5)`,
		id, o.Username, o.Email, o.FullName, o.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%w: %s", ErrUserExists, o.Username)
		}
		return "", fmt.Errorf("create owner: %w", err)
	}
	return id, nil
}

// GetOwnerByUsername возвращает владельца по имени учётной записи.
func (r *PostgresRepository) GetOwnerByUsername(ctx context.Context, username string) (*model.Owner, error) {
	return r.scanOwner(r.pool.QueryRow(ctx,
		ownerColumns+` WHERE username = $1`, username))
}

// GetOwnerByID возвращает владельца по идентификатору.
func (r *PostgresRepository) GetOwnerByID(ctx context.Context, id string) (*model.Owner, error) {
	return r.scanOwner(r.pool.QueryRow(ctx,
		ownerColumns+` WHERE id = $1`, id))
}

const ownerColumns = `SELECT id, username, email, full_name, password_hash, created_at FROM owners`

func (r *PostgresRepository) scanOwner(row pgx.Row) (*model.Owner, error) {
	var o model.Owner
	err := row.Scan(&o.ID, &o.Username, &o.Email, &o.FullName, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &o, nil
}
