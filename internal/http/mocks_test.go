package http

import (
	"context"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/kookie-shop/storefront/internal/service"
)

type MockCartService struct {
	Cart       *domain.Cart
	AddResult  *service.AddItemResult
	CountValue int
	Err        error
	LastOwner  domain.Identity
	LastQty    int
}

func (m *MockCartService) GetCart(_ context.Context, owner domain.Identity) (*domain.Cart, error) {
	m.LastOwner = owner
	return m.Cart, m.Err
}

func (m *MockCartService) AddItem(_ context.Context, owner domain.Identity, _ int64, quantity int) (*service.AddItemResult, error) {
	m.LastOwner = owner
	m.LastQty = quantity
	return m.AddResult, m.Err
}

func (m *MockCartService) UpdateQuantity(_ context.Context, owner domain.Identity, _ int64, quantity int) error {
	m.LastOwner = owner
	m.LastQty = quantity
	return m.Err
}

func (m *MockCartService) RemoveItem(_ context.Context, owner domain.Identity, _ int64) error {
	m.LastOwner = owner
	return m.Err
}

func (m *MockCartService) ClearCart(_ context.Context, owner domain.Identity) error {
	m.LastOwner = owner
	return m.Err
}

func (m *MockCartService) Count(_ context.Context, owner domain.Identity) (int, error) {
	m.LastOwner = owner
	return m.CountValue, m.Err
}

type MockCheckoutService struct {
	Order    *domain.Order
	Err      error
	Key      string
	Shipping domain.ShippingInfo
}

func (m *MockCheckoutService) Checkout(_ context.Context, _ domain.Identity, shipping domain.ShippingInfo, key string) (*domain.Order, error) {
	m.Shipping = shipping
	m.Key = key
	return m.Order, m.Err
}

type MockOrderService struct {
	Orders     []*domain.Order
	Order      *domain.Order
	Err        error
	NextStatus domain.OrderStatus
}

func (m *MockOrderService) ListOrders(context.Context, domain.Identity) ([]*domain.Order, error) {
	return m.Orders, m.Err
}

func (m *MockOrderService) GetOrder(context.Context, domain.Identity, int64) (*domain.Order, error) {
	return m.Order, m.Err
}

func (m *MockOrderService) UpdateStatus(_ context.Context, _ int64, next domain.OrderStatus) error {
	m.NextStatus = next
	return m.Err
}

type MockAuthService struct {
	User        *domain.User
	LoginResult *service.LoginResult
	Err         error
	LoggedOut   []string
	LoginToken  string
}

func (m *MockAuthService) Register(context.Context, domain.Registration) (*domain.User, error) {
	return m.User, m.Err
}

func (m *MockAuthService) Login(_ context.Context, _ domain.Identity, token, _, _ string) (*service.LoginResult, error) {
	m.LoginToken = token
	return m.LoginResult, m.Err
}

func (m *MockAuthService) CurrentUser(_ context.Context, current domain.Identity) (*domain.User, error) {
	if !current.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return m.User, m.Err
}

func (m *MockAuthService) Logout(_ context.Context, token string) error {
	m.LoggedOut = append(m.LoggedOut, token)
	return m.Err
}

type MockResolver struct {
	Identity domain.Identity
	Token    string
	Err      error
	Seen     string
}

func (m *MockResolver) Resolve(_ context.Context, token string) (domain.Identity, string, error) {
	m.Seen = token
	return m.Identity, m.Token, m.Err
}
