// Package orderstore is the boundary between the order handlers and the relational store.
package orderstore

import (
	"context"
	"errors"

	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"go.opentelemetry.io/otel"
)

var (
	// ErrStoreUnavailable means no connection could be obtained or the round trip failed.
	ErrStoreUnavailable = errors.New("order store unavailable")
	// ErrStoreRejected means the store refused the statement.
	ErrStoreRejected = errors.New("order store rejected the statement")
)

var tracer = otel.Tracer("orderstore")

type Store interface {
	// InsertOrder persists o and returns the identity the store assigned to it.
	InsertOrder(ctx context.Context, o order.NormalizedOrder) (order.OrderID, error)
	// ListOrders returns every order in insertion order.
	ListOrders(ctx context.Context) ([]order.PersistedOrder, error)
}
