package repository

import (
	"context"
	"errors"

	"github.com/kookie-shop/storefront/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateCheckout = errors.New("order for this idempotency key already exists")
	ErrStaleStatus       = errors.New("order status changed concurrently")
)

// CartRepository defines the interface for cart line operations.
// Every call is scoped to exactly one owner.
type CartRepository interface {
	ListLines(ctx context.Context, owner domain.Identity) ([]domain.CartLine, error)
	AddLine(ctx context.Context, owner domain.Identity, productID int64, quantity int) error
	SetLineQuantity(ctx context.Context, owner domain.Identity, productID int64, quantity int) error
	RemoveLine(ctx context.Context, owner domain.Identity, productID int64) error
	ClearCart(ctx context.Context, owner domain.Identity) error
	CountItems(ctx context.Context, owner domain.Identity) (int, error)
	MergeGuestCart(ctx context.Context, sessionToken string, userID int64) (int, error)
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type OrderRepository interface {
	// PlaceOrder turns the owner's cart into an order inside one transaction.
	// The bool result is false when an existing order was returned for the
	// idempotency key.
	PlaceOrder(ctx context.Context, owner domain.Identity, shipping domain.ShippingInfo, idempotencyKey string) (*domain.Order, bool, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	GetOrder(ctx context.Context, owner domain.Identity, id int64) (*domain.Order, error)
	GetOrderStatus(ctx context.Context, id int64) (domain.OrderStatus, error)
	UpdateOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type RepoInterface interface {
	CartRepository
	ProductRepository
	OrderRepository
	UserRepository
	OutboxRepository
	Ping(ctx context.Context) error
	Close() error
	RunMigrations() error
}
