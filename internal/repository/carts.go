package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/bakeshop-system/internal/ids"
	"github.com/mmeshcher/bakeshop-system/internal/model"
)

// CartRef идентифицирует конкретную версию корзины для оптимистичной блокировки.
type CartRef struct {
	ID      string
	Version int64
}

// FindCart возвращает активную корзину владельца вместе с позициями.
// Слитые корзины посетителей по ключу владельца не находятся.
func (r *PostgresRepository) FindCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	var c model.Cart
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_type, owner_id, version, merged_at
		 FROM carts
		 WHERE owner_type = $1 AND owner_id = $2 AND merged_at IS NULL`,
		string(owner.Type), owner.ID,
	).Scan(&c.ID, &c.Owner.Type, &c.Owner.ID, &c.Version, &c.MergedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	lines, err := r.cartLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lines = lines

	return &c, nil
}

func (r *PostgresRepository) cartLines(ctx context.Context, cartID string) ([]model.CartLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// FindOrCreateCart возвращает активную корзину владельца, создавая её при необходимости.
func (r *PostgresRepository) FindOrCreateCart(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	cart, err := r.FindCart(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	// Конкурентное создание разрешает частичный уникальный индекс: проигравший
	// вставку просто находит корзину победителя.
	_, err = r.pool.Exec(ctx,
		`INSERT INTO carts (id, owner_type, owner_id) VALUES ($1, $2, $3)
		 ON CONFLICT (owner_type, owner_id) WHERE merged_at IS NULL DO NOTHING`,
		ids.New(), string(owner.Type), owner.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	return r.FindCart(ctx, owner)
}

// lockCart захватывает строку активной корзины владельца внутри транзакции.
func lockCart(ctx context.Context, tx pgx.Tx, owner model.CartOwner) (string, bool, error) {
	var cartID string
	err := tx.QueryRow(ctx,
		`SELECT id FROM carts WHERE owner_type = $1 AND owner_id = $2 AND merged_at IS NULL FOR UPDATE`,
		string(owner.Type), owner.ID,
	).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lock cart: %w", err)
	}
	return cartID, true, nil
}

// UpsertCartLine добавляет delta к количеству позиции с указанным товаром,
// создавая корзину и позицию при необходимости. Изменение количества выполняется
// одним атомарным оператором, поэтому конкурентные добавления не теряются.
// Отрицательная delta уменьшает количество не ниже единицы; создание позиции
// с неположительной delta отклоняется. Нулевая delta — чтение без побочных
// эффектов: корзина не создаётся.
func (r *PostgresRepository) UpsertCartLine(ctx context.Context, owner model.CartOwner, productID string, delta int32) (*model.Cart, error) {
	if delta == 0 {
		return r.FindCart(ctx, owner)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cartID, found, err := lockCart(ctx, tx, owner)
	if err != nil {
		return nil, err
	}
	if !found {
		if delta < 0 {
			return nil, ErrInvalidQuantity
		}
		cartID = ids.New()
		_, err = tx.Exec(ctx,
			`INSERT INTO carts (id, owner_type, owner_id) VALUES ($1, $2, $3)
			 ON CONFLICT (owner_type, owner_id) WHERE merged_at IS NULL DO NOTHING`,
			cartID, string(owner.Type), owner.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
		cartID, found, err = lockCart(ctx, tx, owner)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrCartConflict
		}
	}

	if delta > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			ids.New(), cartID, productID, delta,
		)
		if err != nil {
			return nil, fmt.Errorf("upsert cart item: %w", asConflict(err))
		}
	} else {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE cart_items SET quantity = GREATEST(1, quantity + $3) WHERE cart_id = $1 AND product_id = $2`,
			cartID, productID, delta,
		)
		if err != nil {
			return nil, fmt.Errorf("decrease cart item: %w", asConflict(err))
		}
		if cmdTag.RowsAffected() == 0 {
			return nil, ErrInvalidQuantity
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET version = version + 1 WHERE id = $1`, cartID); err != nil {
		return nil, fmt.Errorf("bump cart version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", asConflict(err))
	}

	return r.FindCart(ctx, owner)
}

// RemoveCartLine удаляет позицию корзины по её идентификатору.
func (r *PostgresRepository) RemoveCartLine(ctx context.Context, owner model.CartOwner, lineID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cartID, found, err := lockCart(ctx, tx, owner)
	if err != nil {
		return err
	}
	if !found {
		return ErrCartNotFound
	}

	cmdTag, err := tx.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`,
		cartID, lineID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLineNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET version = version + 1 WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("bump cart version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", asConflict(err))
	}

	return nil
}

// ReplaceCartLines заменяет позиции корзины целиком при совпадении версии.
// Используется ленивой очисткой битых ссылок на товары: проигрыш гонки версий
// означает, что корзину уже почистил кто-то другой.
func (r *PostgresRepository) ReplaceCartLines(ctx context.Context, ref CartRef, lines []model.CartLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE carts SET version = version + 1 WHERE id = $1 AND version = $2`,
		ref.ID, ref.Version,
	)
	if err != nil {
		return fmt.Errorf("bump cart version: %w", asConflict(err))
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)`, ref.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check cart: %w", err)
		}
		if !exists {
			return ErrCartNotFound
		}
		return ErrCartConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, ref.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if err := insertCartLines(ctx, tx, ref.ID, lines, false); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", asConflict(err))
	}

	return nil
}

// CommitMerge атомарно фиксирует результат слияния корзины посетителя в корзину
// покупателя: обе строки блокируются в детерминированном порядке, версии
// перепроверяются, позиции назначения переписываются заранее вычисленным
// результатом, исходная корзина помечается слитой. Либо фиксируется всё, либо ничего.
func (r *PostgresRepository) CommitMerge(ctx context.Context, src, dst CartRef, merged []model.CartLine) error {
	if src.ID == dst.ID {
		return fmt.Errorf("merge cart into itself: %s", src.ID)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокировка в порядке возрастания идентификаторов исключает взаимную
	// блокировку двух встречных слияний.
	lockOrder := []string{src.ID, dst.ID}
	sort.Strings(lockOrder)

	locked := make(map[string]struct {
		version  int64
		mergedAt *time.Time
	}, 2)
	for _, id := range lockOrder {
		var version int64
		var mergedAt *time.Time
		err := tx.QueryRow(ctx, `SELECT version, merged_at FROM carts WHERE id = $1 FOR UPDATE`, id).
			Scan(&version, &mergedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartNotFound
			}
			return fmt.Errorf("lock cart %s: %w", id, asConflict(err))
		}
		locked[id] = struct {
			version  int64
			mergedAt *time.Time
		}{version, mergedAt}
	}

	if locked[src.ID].mergedAt != nil {
		return ErrCartAlreadyMerged
	}
	if locked[src.ID].version != src.Version || locked[dst.ID].version != dst.Version {
		return ErrCartConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, dst.ID); err != nil {
		return fmt.Errorf("clear destination items: %w", err)
	}

	if err := insertCartLines(ctx, tx, dst.ID, merged, true); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET version = version + 1 WHERE id = $1`, dst.ID); err != nil {
		return fmt.Errorf("bump destination version: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE carts SET merged_at = now(), version = version + 1 WHERE id = $1`, src.ID,
	); err != nil {
		return fmt.Errorf("mark source merged: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", asConflict(err))
	}

	return nil
}

// insertCartLines вставляет позиции корзины. При remint позиции получают новые
// идентификаторы: перенесённые при слиянии строки не должны конфликтовать с
// ещё существующими строками исходной корзины.
func insertCartLines(ctx context.Context, tx pgx.Tx, cartID string, lines []model.CartLine, remint bool) error {
	for _, l := range lines {
		id := l.ID
		if remint || id == "" {
			id = ids.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			id, cartID, l.ProductID, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}
	return nil
}
