package orderstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/taldoflemis/pizzeria/pacchetto/order"
)

// Memory keeps orders in process. It is used by tests and by the "memory" driver.
type Memory struct {
	mu          sync.RWMutex
	orders      []order.PersistedOrder
	lastID      order.OrderID
	unavailable bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// SetUnavailable makes every following call fail with ErrStoreUnavailable.
func (m *Memory) SetUnavailable(unavailable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = unavailable
}

// InsertOrder implements Store.
func (m *Memory) InsertOrder(ctx context.Context, o order.NormalizedOrder) (order.OrderID, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: insert order: %w", ErrStoreUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return 0, fmt.Errorf("%w: insert order: memory store is down", ErrStoreUnavailable)
	}

	m.lastID++
	m.orders = append(m.orders, order.PersistedOrder{ID: m.lastID, NormalizedOrder: o})
	return m.lastID, nil
}

// ListOrders implements Store.
func (m *Memory) ListOrders(ctx context.Context) ([]order.PersistedOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrStoreUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return nil, fmt.Errorf("%w: list orders: memory store is down", ErrStoreUnavailable)
	}

	orders := make([]order.PersistedOrder, len(m.orders))
	copy(orders, m.orders)
	return orders, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return fmt.Errorf("%w: memory store is down", ErrStoreUnavailable)
	}
	return nil
}
