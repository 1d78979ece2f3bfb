package orderstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/order"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Postgres, pacchetto.DatabaseSettings) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := pacchetto.DatabaseSettings{
		Driver:   pacchetto.DatabaseDriverPostgres,
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		SSLMode:  "disable",
		MaxConns: 4,
		Migrate:  true,
	}

	require.NoError(t, Migrate(cfg))

	store, err := NewPostgres(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store, cfg
}

func TestPostgresRoundTrip(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	// Arrange
	want := order.NormalizedOrder{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "a@b.com",
		Method:    order.MethodDelivery,
		Toppings:  "cheese,basil",
		Size:      order.SizeMedium,
	}

	// Act
	id, err := store.InsertOrder(ctx, want)
	require.NoError(t, err)
	orders, err := store.ListOrders(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].ID)
	assert.Equal(t, want, orders[0].NormalizedOrder)
}

func TestPostgresKeepsValuesVerbatim(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	want := order.NormalizedOrder{
		FirstName: "  José ",
		LastName:  "O'Brien; DROP TABLE orders;--",
		Email:     "weird@@..",
		Method:    order.MethodPickup,
		Toppings:  "",
		Size:      order.SizeLarge,
	}

	_, err := store.InsertOrder(ctx, want)
	require.NoError(t, err)

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, want, orders[0].NormalizedOrder)
}

func TestPostgresListInInsertionOrder(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	names := []string{"Ana", "Bruno", "Carla", "Dario"}
	ids := make([]order.OrderID, 0, len(names))
	for _, name := range names {
		id, err := store.InsertOrder(ctx, newTestOrder(name))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, len(names))
	for i := range names {
		assert.Equal(t, ids[i], orders[i].ID)
		assert.Equal(t, names[i], orders[i].FirstName)
	}
}

func TestPostgresListEmpty(t *testing.T) {
	store, _ := setupTestDB(t)

	orders, err := store.ListOrders(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestPostgresMigrateIsIdempotent(t *testing.T) {
	_, cfg := setupTestDB(t)

	assert.NoError(t, Migrate(cfg))
}

func TestPostgresConcurrentInsertsDoNotLeakConnections(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	// more goroutines than pooled connections, half of them failing
	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := newTestOrder(fmt.Sprintf("customer-%d", i))
			if i%2 == 0 {
				o.FirstName = "bad\x00name"
			}
			_, _ = store.InsertOrder(ctx, o)
		}(i)
	}
	wg.Wait()

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, n/2)
	assert.Zero(t, store.pool.Stat().AcquiredConns())
}

func TestPostgresRejectedWrite(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	// postgres refuses NUL bytes in text values
	o := newTestOrder("An\x00a")

	_, err := store.InsertOrder(ctx, o)

	assert.ErrorIs(t, err, ErrStoreRejected)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestPostgresUnavailableAfterClose(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()
	store.Close()

	_, insertErr := store.InsertOrder(ctx, newTestOrder("Ana"))
	_, listErr := store.ListOrders(ctx)

	assert.ErrorIs(t, insertErr, ErrStoreUnavailable)
	assert.ErrorIs(t, listErr, ErrStoreUnavailable)
}

func TestNewPostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewPostgres(ctx, pacchetto.DatabaseSettings{
		Driver:   pacchetto.DatabaseDriverPostgres,
		Host:     "127.0.0.1",
		Port:     1,
		User:     "nobody",
		Name:     "nothing",
		SSLMode:  "disable",
		MaxConns: 1,
	})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "server error",
			err:  &pgconn.PgError{Code: "23514", Message: "check violation"},
			want: ErrStoreRejected,
		},
		{
			name: "wrapped server error",
			err:  fmt.Errorf("exec: %w", &pgconn.PgError{Code: "22021"}),
			want: ErrStoreRejected,
		},
		{
			name: "network error",
			err:  errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			want: ErrStoreUnavailable,
		},
		{
			name: "cancelled",
			err:  context.Canceled,
			want: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("insert order", tt.err)

			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
