package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OrderPubSubber fans persisted orders out to the live admin feeds.
type OrderPubSubber interface {
	PubOrder(ctx context.Context, o order.PersistedOrder) error
	SubLiveOrders(ctx context.Context, subscriberID string) (<-chan order.PersistedOrder, error)
	UnsubLiveOrders(ctx context.Context, subscriberID string) error
}

type GoChannelOrderPubSubber struct {
	liveEventSubscribers map[string]chan order.PersistedOrder
	bufferSize           int
	mu                   sync.Mutex
}

func NewGoChannelOrderPubSubber(bufferSize int) *GoChannelOrderPubSubber {
	return &GoChannelOrderPubSubber{
		liveEventSubscribers: make(map[string]chan order.PersistedOrder),
		bufferSize:           bufferSize,
	}
}

var _ OrderPubSubber = (*GoChannelOrderPubSubber)(nil)

// PubOrder implements OrderPubSubber. A subscriber whose buffer is full misses the order.
func (g *GoChannelOrderPubSubber) PubOrder(ctx context.Context, o order.PersistedOrder) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.PubOrder", trace.WithAttributes(
		attribute.Int64("order.id", int64(o.ID)),
	))
	defer span.End()

	slog.DebugContext(ctx, "publishing order", slog.Int64("order-id", int64(o.ID)))

	g.mu.Lock()
	defer g.mu.Unlock()

	for id, subChan := range g.liveEventSubscribers {
		select {
		case subChan <- o:
		default:
			slog.WarnContext(ctx, "live subscriber is lagging, dropping order",
				slog.String("subscriber-id", id),
				slog.Int64("order-id", int64(o.ID)),
			)
		}
	}

	return nil
}

// SubLiveOrders implements OrderPubSubber.
func (g *GoChannelOrderPubSubber) SubLiveOrders(ctx context.Context, subscriberID string) (<-chan order.PersistedOrder, error) {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.SubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "subscribing to live orders", slog.String("subscriber-id", subscriberID))

	ch := make(chan order.PersistedOrder, g.bufferSize)
	g.mu.Lock()
	if old, ok := g.liveEventSubscribers[subscriberID]; ok {
		close(old)
	}
	g.liveEventSubscribers[subscriberID] = ch
	g.mu.Unlock()
	return ch, nil
}

// UnsubLiveOrders implements OrderPubSubber. The subscriber channel is closed.
func (g *GoChannelOrderPubSubber) UnsubLiveOrders(ctx context.Context, subscriberID string) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders", slog.String("subscriber-id", subscriberID))

	g.mu.Lock()
	defer g.mu.Unlock()
	if ch, ok := g.liveEventSubscribers[subscriberID]; ok {
		close(ch)
		delete(g.liveEventSubscribers, subscriberID)
	}
	return nil
}

func (g *GoChannelOrderPubSubber) SubscriberCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.liveEventSubscribers)
}
