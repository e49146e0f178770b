package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

const maxShippingFieldLen = 255

type ShippingInfo struct {
	Name    string
	Address string
	City    string
	Zip     string
}

// Normalize trims every field and checks it fits the orders table.
func (s ShippingInfo) Normalize() (ShippingInfo, error) {
	out := ShippingInfo{
		Name:    strings.TrimSpace(s.Name),
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
		Zip:     strings.TrimSpace(s.Zip),
	}
	fields := []struct {
		name, value string
	}{
		{"shipping_name", out.Name},
		{"shipping_address", out.Address},
		{"shipping_city", out.City},
		{"shipping_zip", out.Zip},
	}
	for _, f := range fields {
		if f.value == "" {
			return ShippingInfo{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
		if utf8.RuneCountInString(f.value) > maxShippingFieldLen {
			return ShippingInfo{}, fmt.Errorf("%w: %s is longer than %d characters", ErrInvalidInput, f.name, maxShippingFieldLen)
		}
	}
	return out, nil
}

type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID             int64
	Owner          Identity
	IdempotencyKey string
	Shipping       ShippingInfo
	Totals         Totals
	Status         OrderStatus
	Lines          []OrderLine
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
