package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
)

const orderColumns = `id, user_id, session_id, idempotency_key, subtotal, shipping, tax, total_amount, status,
	          shipping_name, shipping_address, shipping_city, shipping_zip, created_at, updated_at`

func (r *Repository) PlaceOrder(ctx context.Context, owner domain.Identity, shipping domain.ShippingInfo, idempotencyKey string) (*domain.Order, bool, error) {
	if err := owner.Validate(); err != nil {
		return nil, false, err
	}

	var (
		order   *domain.Order
		created bool
	)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if idempotencyKey != "" {
			existing, err := getOrderByIdempotencyKey(ctx, tx, owner, idempotencyKey)
			if err == nil {
				order = existing
				return nil
			}
			if !errors.Is(err, domain.ErrOrderNotFound) {
				return err
			}
		}

		lines, err := takeCartLines(ctx, tx, owner)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		o := &domain.Order{
			Owner:          owner,
			IdempotencyKey: idempotencyKey,
			Shipping:       shipping,
			Totals:         domain.PriceLines(lines),
			Status:         domain.OrderStatusPending,
			Lines:          lines,
			CreatedAt:      time.Now().UTC(),
		}
		o.UpdatedAt = o.CreatedAt

		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}
		if err := insertOrderPlacedEvent(ctx, tx, o); err != nil {
			return err
		}

		order = o
		created = true
		return nil
	})

	if errors.Is(err, ErrDuplicateCheckout) {
		// Lost a race on the same key: the other transaction's order wins.
		existing, getErr := getOrderByIdempotencyKey(ctx, r.db, owner, idempotencyKey)
		if getErr != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, created, nil
}

// takeCartLines deletes the owner's cart lines and prices them against the
// catalog inside tx. The returned lines carry the price snapshot.
func takeCartLines(ctx context.Context, tx *sql.Tx, owner domain.Identity) ([]domain.OrderLine, error) {
	where, arg, err := ownerPredicate(owner, 1)
	if err != nil {
		return nil, err
	}

	type taken struct {
		id        int64
		productID int64
		quantity  int
	}

	rows, err := tx.QueryContext(ctx, `DELETE FROM cart_items WHERE `+where+` RETURNING id, product_id, quantity`, arg)
	if err != nil {
		return nil, fmt.Errorf("take cart lines: %w", err)
	}
	var items []taken
	for rows.Next() {
		var t taken
		if err := rows.Scan(&t.id, &t.productID, &t.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		items = append(items, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].id < items[j].id })

	lines := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		line := domain.OrderLine{ProductID: it.productID, Quantity: it.quantity}
		err := tx.QueryRowContext(ctx, `SELECT name, price FROM products WHERE id = $1`, it.productID).
			Scan(&line.ProductName, &line.UnitPrice)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, it.productID)
		}
		if err != nil {
			return nil, fmt.Errorf("price product %d: %w", it.productID, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	cols := columnsFor(o.Owner)
	var key any
	if o.IdempotencyKey != "" {
		key = o.IdempotencyKey
	}

	query := `INSERT INTO orders (user_id, session_id, idempotency_key, subtotal, shipping, tax, total_amount, status,
	              shipping_name, shipping_address, shipping_city, shipping_zip, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		cols.userID,
		cols.sessionID,
		key,
		o.Totals.Subtotal,
		o.Totals.Shipping,
		o.Totals.Tax,
		o.Totals.Total,
		string(o.Status),
		o.Shipping.Name,
		o.Shipping.Address,
		o.Shipping.City,
		o.Shipping.Zip,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
	              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range o.Lines {
		l := &o.Lines[i]
		l.OrderID = o.ID
		if err := tx.QueryRowContext(ctx, itemQuery, o.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice).Scan(&l.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func insertOrderPlacedEvent(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	payload, err := json.Marshal(domain.NewOrderPlacedEvent(o))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, strconv.FormatInt(o.ID, 10), domain.EventTypeOrderPlaced, string(payload), o.CreatedAt); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func getOrderByIdempotencyKey(ctx context.Context, q queryer, owner domain.Identity, key string) (*domain.Order, error) {
	where, arg, err := ownerPredicate(owner, 2)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1 AND `+where, key, arg))
	if err != nil {
		return nil, err
	}
	if o.Lines, err = listOrderLines(ctx, q, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *Repository) GetOrder(ctx context.Context, owner domain.Identity, id int64) (*domain.Order, error) {
	where, arg, err := ownerPredicate(owner, 2)
	if err != nil {
		return nil, err
	}

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND `+where, id, arg))
	if err != nil {
		return nil, err
	}
	if o.Lines, err = listOrderLines(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) GetOrderStatus(ctx context.Context, id int64) (domain.OrderStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrOrderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query order status: %w", err)
	}
	return domain.OrderStatus(status), nil
}

// UpdateOrderStatus moves the order from one status to another only if it is
// still in the from status.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return ErrStaleStatus
	}
	return nil
}

func listOrderLines(ctx context.Context, q queryer, orderID int64) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o         domain.Order
		userID    sql.NullInt64
		sessionID sql.NullString
		key       sql.NullString
		status    string
	)
	err := row.Scan(
		&o.ID,
		&userID,
		&sessionID,
		&key,
		&o.Totals.Subtotal,
		&o.Totals.Shipping,
		&o.Totals.Tax,
		&o.Totals.Total,
		&status,
		&o.Shipping.Name,
		&o.Shipping.Address,
		&o.Shipping.City,
		&o.Shipping.Zip,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if userID.Valid {
		o.Owner = domain.Authenticated(userID.Int64)
	} else {
		o.Owner = domain.Anonymous(sessionID.String)
	}
	o.IdempotencyKey = key.String
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
