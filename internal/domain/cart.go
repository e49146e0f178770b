package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in a cart, joined with the live catalog data.
type CartLine struct {
	ID        int64
	ProductID int64
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  string
	CreatedAt time.Time
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Owner Identity
	Lines []CartLine
	Total decimal.Decimal
	Count int
}

func NewCart(owner Identity, lines []CartLine) *Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	c := &Cart{Owner: owner, Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		c.Total = c.Total.Add(l.LineTotal())
		c.Count += l.Quantity
	}
	return c
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

type Product struct {
	ID            int64
	Name          string
	Category      string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	StockQuantity int
	CreatedAt     time.Time
}
