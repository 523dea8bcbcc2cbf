package backend

import (
	"context"
	"fmt"

	applog "expenses/internal/log"
	"expenses/internal/records"
	"expenses/internal/storage"
	"expenses/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		return f.createCSVBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createCSVBackend(ctx context.Context, config Config) (*BackendResult, error) {
	fb := NewFileBackend(config.ExpensesPath, config.BudgetPath,
		records.Options{SkipMalformed: config.SkipMalformed}, f.logger)

	f.logger.InfoContext(ctx, "Initialized csv backend",
		"expenses_path", config.ExpensesPath,
		"budget_path", config.BudgetPath)

	return &BackendResult{Backend: fb}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, skipped, err := memory.NewFromFiles(config.ExpensesPath, config.BudgetPath,
		records.Options{SkipMalformed: config.SkipMalformed})
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	logSkipped(ctx, f.logger, config.ExpensesPath, skipped)

	f.logger.InfoContext(ctx, "Initialized memory backend, changes will not be persisted",
		"seed_expenses_path", config.ExpensesPath)

	return &BackendResult{Backend: store}, nil
}
