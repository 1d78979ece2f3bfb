package pacchetto

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var allowedHeaders = map[string]struct{}{
	"Accept": {}, "Authorization": {}, "Content-Type": {}, "X-CSRF-Token": {},
}

// NewSettingsValidator returns a validator aware of the custom tags used by the settings structs.
func NewSettingsValidator() *validator.Validate {
	validate := validator.New()
	err := validate.RegisterValidation("baseheader", func(fl validator.FieldLevel) bool {
		header := fl.Field().String()
		_, ok := allowedHeaders[header]
		return ok
	})
	if err != nil {
		panic(fmt.Sprintf("pacchetto: register validation %q: %v", "baseheader", err))
	}
	return validate
}

// LoadDotEnv loads variables from the given files into the process environment.
// Missing files are ignored, already set variables win.
func LoadDotEnv(filenames ...string) error {
	for _, name := range filenames {
		err := godotenv.Load(name)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("dotenv file not found, skipping", slog.String("file", name))
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// LoadConfig reads the embedded yaml, overlays environment variables named
// <envPrefix>_<KEY> and validates the result. aliases binds extra variable
// names to config keys, e.g. "database.host" -> "DB_HOST".
func LoadConfig[T any](envPrefix string, baseConfig []byte, aliases map[string]string) (*T, error) {
	var cfg T

	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(bytes.NewReader(baseConfig))
	if err != nil {
		slog.Error("failed to read config from yaml", slog.Any("err", err))
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	v.AutomaticEnv()

	for key, env := range aliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := NewSettingsValidator().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
