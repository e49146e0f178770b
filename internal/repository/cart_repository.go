package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kookie-shop/storefront/internal/domain"
)

func (r *Repository) ListLines(ctx context.Context, owner domain.Identity) ([]domain.CartLine, error) {
	where, arg, err := ownerPredicate(owner, 1)
	if err != nil {
		return nil, err
	}

	query := `SELECT c.id, c.product_id, p.name, p.category, p.price, c.quantity, p.image_url, c.created_at
	          FROM cart_items c
	          JOIN products p ON p.id = c.product_id
	          WHERE c.` + where + `
	          ORDER BY c.id`

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Category, &l.Price, &l.Quantity, &l.ImageURL, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// AddLine inserts the line or increments the existing one in a single
// statement, so concurrent adds of the same product accumulate.
func (r *Repository) AddLine(ctx context.Context, owner domain.Identity, productID int64, quantity int) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return addLine(ctx, r.db, owner, productID, quantity)
}

func addLine(ctx context.Context, q queryer, owner domain.Identity, productID int64, quantity int) error {
	cols := columnsFor(owner)
	query := `INSERT INTO cart_items (user_id, session_id, product_id, quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	          ON CONFLICT ` + ownerConflictTarget(owner) + `
	          DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`

	_, err := q.ExecContext(ctx, query, cols.userID, cols.sessionID, productID, quantity)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
		}
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (r *Repository) SetLineQuantity(ctx context.Context, owner domain.Identity, productID int64, quantity int) error {
	where, arg, err := ownerPredicate(owner, 3)
	if err != nil {
		return err
	}

	query := `UPDATE cart_items SET quantity = $1, updated_at = CURRENT_TIMESTAMP
	          WHERE product_id = $2 AND ` + where

	if _, err := r.db.ExecContext(ctx, query, quantity, productID, arg); err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return nil
}

func (r *Repository) RemoveLine(ctx context.Context, owner domain.Identity, productID int64) error {
	where, arg, err := ownerPredicate(owner, 2)
	if err != nil {
		return err
	}

	query := `DELETE FROM cart_items WHERE product_id = $1 AND ` + where
	if _, err := r.db.ExecContext(ctx, query, productID, arg); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *Repository) ClearCart(ctx context.Context, owner domain.Identity) error {
	where, arg, err := ownerPredicate(owner, 1)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE `+where, arg); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *Repository) CountItems(ctx context.Context, owner domain.Identity) (int, error) {
	where, arg, err := ownerPredicate(owner, 1)
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE `+where, arg).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return count, nil
}

// MergeGuestCart folds every line owned by sessionToken into the cart of
// userID and deletes the guest lines, all in one transaction. It returns the
// number of guest lines folded.
func (r *Repository) MergeGuestCart(ctx context.Context, sessionToken string, userID int64) (int, error) {
	guest := domain.Anonymous(sessionToken)
	user := domain.Authenticated(userID)
	if err := guest.Validate(); err != nil {
		return 0, err
	}
	if err := user.Validate(); err != nil {
		return 0, err
	}

	var merged int
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		type guestLine struct {
			productID int64
			quantity  int
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT product_id, quantity FROM cart_items WHERE session_id = $1 ORDER BY id`, sessionToken)
		if err != nil {
			return fmt.Errorf("query guest lines: %w", err)
		}
		var lines []guestLine
		for rows.Next() {
			var l guestLine
			if err := rows.Scan(&l.productID, &l.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("scan guest line: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate guest lines: %w", err)
		}

		for _, l := range lines {
			if err := addLine(ctx, tx, user, l.productID, l.quantity); err != nil {
				return fmt.Errorf("merge product %d: %w", l.productID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionToken); err != nil {
			return fmt.Errorf("delete guest lines: %w", err)
		}
		merged = len(lines)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return merged, nil
}
