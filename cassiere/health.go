package main

import (
	"context"
	"errors"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/nats-io/nats.go"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// newHealthChecker reports on the order store and, when given, the NATS connection.
func newHealthChecker(app string, version string, storeName string, store pinger, nc *nats.Conn) (*healthgo.Health, error) {
	checks := []healthgo.Config{
		{
			Name:      storeName,
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check:     store.Ping,
		},
	}

	if nc != nil {
		checks = append(checks, healthgo.Config{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !nc.IsConnected() {
					return errors.New("NATS connection is not active")
				}
				return nil
			},
		})
	}

	return healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    app,
			Version: version,
		}),
		healthgo.WithChecks(checks...),
	)
}
