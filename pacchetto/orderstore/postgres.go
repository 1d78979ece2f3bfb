package orderstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	insertOrderQuery = `INSERT INTO orders ("firstName", "lastName", email, method, toppings, size)
	                    VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	listOrdersQuery = `SELECT id, "firstName", "lastName", email, method, toppings, size
	                   FROM orders ORDER BY id`
)

type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres opens a connection pool and checks the database answers.
func NewPostgres(ctx context.Context, cfg pacchetto.DatabaseSettings) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL("postgres"))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", ErrStoreUnavailable, err)
	}

	p := &Postgres{pool: pool}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "connected to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Name),
		slog.Int("max-conns", int(poolCfg.MaxConns)),
	)
	return p, nil
}

// InsertOrder implements Store.
func (p *Postgres) InsertOrder(ctx context.Context, o order.NormalizedOrder) (order.OrderID, error) {
	ctx, span := tracer.Start(ctx, "Postgres.InsertOrder", trace.WithAttributes(
		attribute.String("order.method", o.Method),
		attribute.String("order.size", o.Size),
	))
	defer span.End()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return 0, recordErr(span, fmt.Errorf("%w: acquire connection: %w", ErrStoreUnavailable, err))
	}
	defer conn.Release()

	var id order.OrderID
	err = conn.QueryRow(ctx, insertOrderQuery,
		o.FirstName,
		o.LastName,
		o.Email,
		o.Method,
		o.Toppings,
		o.Size,
	).Scan(&id)
	if err != nil {
		return 0, recordErr(span, classify("insert order", err))
	}

	span.SetAttributes(attribute.Int64("order.id", int64(id)))
	return id, nil
}

// ListOrders implements Store.
func (p *Postgres) ListOrders(ctx context.Context) ([]order.PersistedOrder, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListOrders")
	defer span.End()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("%w: acquire connection: %w", ErrStoreUnavailable, err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, listOrdersQuery)
	if err != nil {
		return nil, recordErr(span, classify("list orders", err))
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, recordErr(span, classify("scan orders", err))
	}
	if orders == nil {
		orders = []order.PersistedOrder{}
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.PersistedOrder, error) {
	var o order.PersistedOrder
	err := row.Scan(
		&o.ID,
		&o.FirstName,
		&o.LastName,
		&o.Email,
		&o.Method,
		&o.Toppings,
		&o.Size,
	)
	return o, err
}

// Ping acquires a connection and round trips to the server.
func (p *Postgres) Ping(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", ErrStoreUnavailable, err)
	}
	defer conn.Release()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// classify maps a driver error to ErrStoreRejected when the server answered
// with an error, ErrStoreUnavailable otherwise.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %w", ErrStoreRejected, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
