package domain

import "time"

const EventTypeOrderPlaced = "order.placed"

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type OrderPlacedLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderPlacedEvent struct {
	OrderID  int64             `json:"order_id"`
	UserID   int64             `json:"user_id,omitempty"`
	Guest    bool              `json:"guest"`
	Subtotal string            `json:"subtotal"`
	Shipping string            `json:"shipping"`
	Tax      string            `json:"tax"`
	Total    string            `json:"total"`
	Lines    []OrderPlacedLine `json:"lines"`
	PlacedAt time.Time         `json:"placed_at"`
}

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	ev := OrderPlacedEvent{
		OrderID:  o.ID,
		UserID:   o.Owner.UserID,
		Guest:    !o.Owner.IsAuthenticated(),
		Subtotal: o.Totals.Subtotal.StringFixed(2),
		Shipping: o.Totals.Shipping.StringFixed(2),
		Tax:      o.Totals.Tax.StringFixed(2),
		Total:    o.Totals.Total.StringFixed(2),
		Lines:    make([]OrderPlacedLine, 0, len(o.Lines)),
		PlacedAt: o.CreatedAt,
	}
	for _, l := range o.Lines {
		ev.Lines = append(ev.Lines, OrderPlacedLine{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}
	return ev
}
