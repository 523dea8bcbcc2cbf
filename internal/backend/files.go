package backend

import (
	"context"

	"expenses/internal/budget"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/records"
)

// FileBackend keeps records in a CSV file and the budget in a plain-text
// file, each fully overwritten on save.
type FileBackend struct {
	expensesPath string
	budgetPath   string
	opts         records.Options
	logger       *applog.Logger
}

func NewFileBackend(expensesPath, budgetPath string, opts records.Options, logger *applog.Logger) *FileBackend {
	if logger == nil {
		logger = applog.Discard()
	}
	return &FileBackend{
		expensesPath: expensesPath,
		budgetPath:   budgetPath,
		opts:         opts,
		logger:       logger.WithComponent(applog.ComponentRecords),
	}
}

func (b *FileBackend) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	items, skipped, err := records.LoadWithOptions(b.expensesPath, b.opts)
	if err != nil {
		return nil, err
	}
	logSkipped(ctx, b.logger, b.expensesPath, skipped)
	b.logger.DebugContext(ctx, "Expenses loaded", applog.NewFields().
		WithOperation(applog.OpLoad).
		WithPath(b.expensesPath).
		WithCount(len(items)).
		ToSlice()...)
	return items, nil
}

func (b *FileBackend) SaveExpenses(ctx context.Context, items []core.Expense) error {
	if err := records.Save(b.expensesPath, items); err != nil {
		return err
	}
	b.logger.DebugContext(ctx, "Expenses saved", applog.NewFields().
		WithOperation(applog.OpSave).
		WithPath(b.expensesPath).
		WithCount(len(items)).
		ToSlice()...)
	return nil
}

func (b *FileBackend) LoadBudget(_ context.Context) (core.Budget, error) {
	return budget.Load(b.budgetPath)
}

func (b *FileBackend) SaveBudget(ctx context.Context, v core.Budget) error {
	if err := budget.Save(b.budgetPath, v); err != nil {
		return err
	}
	if v.IsSet() {
		b.logger.DebugContext(ctx, "Budget saved",
			applog.FieldPath, b.budgetPath,
			applog.FieldBudget, v.String())
	}
	return nil
}

func logSkipped(ctx context.Context, logger *applog.Logger, path string, skipped []*records.RowError) {
	for _, rowErr := range skipped {
		logger.WarnContext(ctx, "Skipped malformed expense row",
			applog.FieldPath, path,
			applog.FieldLine, rowErr.Line,
			applog.FieldError, rowErr.Err)
	}
}
