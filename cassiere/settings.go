package main

import (
	_ "embed"

	"github.com/taldoflemis/pizzeria/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

const envPrefix = "CASSIERE"

// Variable names the service has always been deployed with.
var envAliases = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"http.port":         "APP_PORT",
}

type FeedSettings struct {
	// Orders buffered per live subscriber before new ones are dropped
	BufferSize int `mapstructure:"buffersize" validate:"gte=0"`
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	Database      pacchetto.DatabaseSettings      `mapstructure:"database" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats"`
	Feed          FeedSettings                    `mapstructure:"feed"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings](envPrefix, baseConfig, envAliases)
}
