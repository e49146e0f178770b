package service

import (
	"context"
	"sync"

	"github.com/kookie-shop/storefront/internal/domain"
)

type MockCartRepository struct {
	mu          sync.Mutex
	Lines       []domain.CartLine
	ListErr     error
	ListCalls   int
	StallFirst  chan struct{}
	AddErr      error
	Added       []int
	SetCalls    []int
	SetErr      error
	Removed     []int64
	RemoveErr   error
	Cleared     int
	ClearErr    error
	Count       int
	CountErr    error
	Merged      int
	MergeErr    error
	MergeTokens []string
}

// ListLines snapshots the lines when the read starts. With StallFirst set the
// first call waits for it to close or for ctx to end.
func (m *MockCartRepository) ListLines(ctx context.Context, _ domain.Identity) ([]domain.CartLine, error) {
	m.mu.Lock()
	m.ListCalls++
	first := m.ListCalls == 1
	lines := append([]domain.CartLine(nil), m.Lines...)
	listErr := m.ListErr
	m.mu.Unlock()

	if first && m.StallFirst != nil {
		select {
		case <-m.StallFirst:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return lines, listErr
}

func (m *MockCartRepository) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls
}

func (m *MockCartRepository) AddLine(_ context.Context, _ domain.Identity, productID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, quantity)
	if m.AddErr == nil {
		m.Lines = append(m.Lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	}
	return m.AddErr
}

func (m *MockCartRepository) SetLineQuantity(_ context.Context, _ domain.Identity, _ int64, quantity int) error {
	m.SetCalls = append(m.SetCalls, quantity)
	return m.SetErr
}

func (m *MockCartRepository) RemoveLine(_ context.Context, _ domain.Identity, productID int64) error {
	m.Removed = append(m.Removed, productID)
	return m.RemoveErr
}

func (m *MockCartRepository) ClearCart(context.Context, domain.Identity) error {
	m.Cleared++
	return m.ClearErr
}

func (m *MockCartRepository) CountItems(context.Context, domain.Identity) (int, error) {
	return m.Count, m.CountErr
}

func (m *MockCartRepository) MergeGuestCart(_ context.Context, sessionToken string, _ int64) (int, error) {
	m.MergeTokens = append(m.MergeTokens, sessionToken)
	return m.Merged, m.MergeErr
}

type MockProductRepository struct {
	Product *domain.Product
	Err     error
}

func (m *MockProductRepository) GetProduct(context.Context, int64) (*domain.Product, error) {
	return m.Product, m.Err
}

type MockOrderRepository struct {
	Order        *domain.Order
	Created      bool
	PlaceErr     error
	PlacedKey    string
	PlacedShip   domain.ShippingInfo
	Orders       []*domain.Order
	ListErr      error
	GetErr       error
	Status       domain.OrderStatus
	StatusErr    error
	UpdateErr    error
	UpdatedFrom  domain.OrderStatus
	UpdatedTo    domain.OrderStatus
	UpdateCalled bool
}

func (m *MockOrderRepository) PlaceOrder(_ context.Context, _ domain.Identity, shipping domain.ShippingInfo, key string) (*domain.Order, bool, error) {
	m.PlacedKey = key
	m.PlacedShip = shipping
	return m.Order, m.Created, m.PlaceErr
}

func (m *MockOrderRepository) ListOrdersByUser(context.Context, int64) ([]*domain.Order, error) {
	return m.Orders, m.ListErr
}

func (m *MockOrderRepository) GetOrder(context.Context, domain.Identity, int64) (*domain.Order, error) {
	return m.Order, m.GetErr
}

func (m *MockOrderRepository) GetOrderStatus(context.Context, int64) (domain.OrderStatus, error) {
	return m.Status, m.StatusErr
}

func (m *MockOrderRepository) UpdateOrderStatus(_ context.Context, _ int64, from, to domain.OrderStatus) error {
	m.UpdateCalled = true
	m.UpdatedFrom = from
	m.UpdatedTo = to
	return m.UpdateErr
}

type MockUserRepository struct {
	User       *domain.User
	GetErr     error
	CreateErr  error
	Created    *domain.User
	LookedUpID int64
}

func (m *MockUserRepository) CreateUser(_ context.Context, name, email, hash string) (*domain.User, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = &domain.User{ID: 1, Name: name, Email: email, PasswordHash: hash}
	return m.Created, nil
}

func (m *MockUserRepository) GetUserByEmail(context.Context, string) (*domain.User, error) {
	return m.User, m.GetErr
}

func (m *MockUserRepository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.LookedUpID = id
	return m.User, m.GetErr
}

type MockMerger struct {
	Merged int
	Err    error
	Calls  int
}

func (m *MockMerger) Merge(context.Context, string, int64) (int, error) {
	m.Calls++
	return m.Merged, m.Err
}

type MockSessions struct {
	NewToken   string
	BindErr    error
	BoundUser  int64
	BindCalls  int
	Destroyed  []string
	DestroyErr error
}

func (m *MockSessions) Bind(_ context.Context, _ string, userID int64) (string, error) {
	m.BindCalls++
	m.BoundUser = userID
	return m.NewToken, m.BindErr
}

func (m *MockSessions) Destroy(_ context.Context, token string) error {
	m.Destroyed = append(m.Destroyed, token)
	return m.DestroyErr
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveCheckout(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}
