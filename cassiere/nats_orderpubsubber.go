package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"github.com/taldoflemis/pizzeria/pacchetto/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NATSOrderPubSubber shares the live feed between every cassiere instance through a NATS subject.
type NATSOrderPubSubber struct {
	nc          *nats.Conn
	subject     string
	channelSize int
	mu          sync.Mutex
	subs        map[string]*nats.Subscription
}

var _ OrderPubSubber = (*NATSOrderPubSubber)(nil)

func NewNATSOrderPubSubber(nc *nats.Conn, subject string, channelSize int) *NATSOrderPubSubber {
	return &NATSOrderPubSubber{
		nc:          nc,
		subject:     subject,
		channelSize: channelSize,
		subs:        make(map[string]*nats.Subscription),
	}
}

// PubOrder implements OrderPubSubber.
func (n *NATSOrderPubSubber) PubOrder(ctx context.Context, o order.PersistedOrder) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.PubOrder", trace.WithAttributes(
		attribute.Int64("order.id", int64(o.ID)),
		attribute.String("messaging.destination", n.subject),
	))
	defer span.End()

	msg := &nats.Msg{
		Subject: n.subject,
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal order")
		return err
	}
	msg.Data = data

	err = n.nc.PublishMsg(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("subject", n.subject), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order")
		return err
	}

	return nil
}

// SubLiveOrders implements OrderPubSubber.
func (n *NATSOrderPubSubber) SubLiveOrders(ctx context.Context, subscriberID string) (<-chan order.PersistedOrder, error) {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.SubLiveOrders")
	defer span.End()

	orderCh := make(chan order.PersistedOrder, n.channelSize)
	sub, err := n.nc.Subscribe(n.subject, func(msg *nats.Msg) {
		msgCtx := telemetry.GetContextFromNatsMsg(context.Background(), msg)

		var o order.PersistedOrder
		err := json.Unmarshal(msg.Data, &o)
		if err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal order from NATS message", slog.Any("err", err))
			return
		}

		select {
		case orderCh <- o:
		default:
			slog.WarnContext(msgCtx, "live subscriber is lagging, dropping order",
				slog.String("subscriber-id", subscriberID),
				slog.Int64("order-id", int64(o.ID)),
			)
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to NATS subject", slog.String("subject", n.subject), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return nil, err
	}

	n.mu.Lock()
	if old, ok := n.subs[subscriberID]; ok {
		old.Unsubscribe()
	}
	n.subs[subscriberID] = sub
	n.mu.Unlock()

	return orderCh, nil
}

// UnsubLiveOrders implements OrderPubSubber. The channel is left open, the subscriber
// is expected to stop reading from it.
func (n *NATSOrderPubSubber) UnsubLiveOrders(ctx context.Context, subscriberID string) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders", slog.String("subscriber-id", subscriberID))

	n.mu.Lock()
	sub, ok := n.subs[subscriberID]
	delete(n.subs, subscriberID)
	n.mu.Unlock()

	if !ok {
		slog.WarnContext(ctx, "no subscription found for subscriber", slog.String("subscriber-id", subscriberID))
		return nil
	}

	return sub.Unsubscribe()
}
