package events

import (
	"context"
	"time"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderCancelled     = "order.cancelled"
)

// Event describes a change to the order ledger.
type Event struct {
	Type        string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status,omitempty"`
	TotalAmount float64   `json:"total_amount"`
	Items       int       `json:"items,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
