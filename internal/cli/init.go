// Package cli wires configuration, logging and storage into the
// interactive menu and the one-shot commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"

	"expenses/internal/backend"
	"expenses/internal/config"
	applog "expenses/internal/log"
	"expenses/internal/session"
)

// SetupLogger initializes structured logging at the configured level and
// sets it as the default logger. debug overrides the level.
func SetupLogger(w io.Writer, level string, debug bool) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = slog.LevelDebug
	}
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentCLI,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads environment overrides from a .env file. Without an
// explicit path, a missing ./.env is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration, applies overrides and validates it.
func LoadAndValidateConfig(overrides func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	if overrides != nil {
		overrides(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenSession creates the configured backend and loads a session from it.
// The returned cleanup must be called once the session is done.
func OpenSession(ctx context.Context, cfg *config.Config, logger *applog.Logger, opts ...session.Option) (*session.Session, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := res.Cleanup
	if cleanup == nil {
		cleanup = func() error { return nil }
	}

	opts = append([]session.Option{session.WithLogger(logger)}, opts...)
	s, err := session.Open(ctx, res.Backend, opts...)
	if err != nil {
		if cerr := cleanup(); cerr != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, cerr)
		}
		return nil, nil, err
	}
	return s, cleanup, nil
}
