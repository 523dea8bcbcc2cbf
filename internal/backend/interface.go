package backend

import (
	"context"

	"expenses/internal/core"
)

// Backend persists the session state: the expense records and the budget.
type Backend interface {
	LoadExpenses(ctx context.Context) ([]core.Expense, error)
	// SaveExpenses fully replaces the stored records.
	SaveExpenses(ctx context.Context, records []core.Expense) error
	LoadBudget(ctx context.Context) (core.Budget, error)
	// SaveBudget stores a set budget; an unset one writes nothing.
	SaveBudget(ctx context.Context, b core.Budget) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// CSV files; the memory backend seeds from them read-only.
	ExpensesPath  string
	BudgetPath    string
	SkipMalformed bool

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CSVBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
