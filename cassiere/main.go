package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/taldoflemis/pizzeria/cassiere/docs"
	"github.com/taldoflemis/pizzeria/pacchetto"
	"github.com/taldoflemis/pizzeria/pacchetto/orderstore"
	"github.com/taldoflemis/pizzeria/pacchetto/telemetry"
)

// @title		Cassiere
// @version		1.0
// @description	Pizza order intake: order form, confirmation and admin listing.
// @host		localhost:3000
// @BasePath	/
func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching cassiere")

	err := pacchetto.LoadDotEnv(".env")
	if err != nil {
		slog.ErrorContext(ctx, "failed to load .env", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	var store interface {
		orderstore.Store
		pinger
	}
	switch settings.Database.Driver {
	case pacchetto.DatabaseDriverMemory:
		slog.WarnContext(ctx, "Using in-memory order store, orders are lost on restart")
		store = orderstore.NewMemory()
	default:
		if settings.Database.Migrate {
			slog.InfoContext(ctx, "Applying database migrations")
			err = orderstore.Migrate(settings.Database)
			if err != nil {
				slog.ErrorContext(ctx, "failed to migrate database", slog.Any("err", err))
				retcode = 1
				return
			}
		}

		slog.InfoContext(ctx, "Connecting to postgres")
		pg, err := orderstore.NewPostgres(ctx, settings.Database)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to postgres", slog.Any("err", err))
			retcode = 1
			return
		}
		defer pg.Close()
		store = pg
	}

	var (
		nc   *nats.Conn
		feed OrderPubSubber
	)
	if settings.Nats.Enabled {
		slog.InfoContext(ctx, "Connecting to NATS server")
		nc, err = settings.Nats.GetNatsClient()
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
			retcode = 1
			return
		}
		defer nc.Close()
		feed = NewNATSOrderPubSubber(nc, settings.Nats.Subject, settings.Feed.BufferSize)
	} else {
		feed = NewGoChannelOrderPubSubber(settings.Feed.BufferSize)
	}

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := newHealthChecker(settings.App.Name, settings.App.Version, settings.Database.Driver, store, nc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error)
	server := echo.New()

	_, err = NewMainHandler(server, settings, store, feed, health)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create handler", slog.Any("err", err))
		retcode = 1
		return
	}
	server.GET("/swagger/*", echoSwagger.WrapHandler)
	pprof.Register(server)

	go func() {
		slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
		errChan <- server.Start(fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
		return
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	err = server.Shutdown(context.Background())
	if err != nil {
		slog.ErrorContext(ctx, "failed to shutdown gracefully the server", slog.Any("err", err))
	}
}
