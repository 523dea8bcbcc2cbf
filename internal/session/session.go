// Package session holds the state of one interactive session: the expense
// records and the budget, loaded from a backend at start and written back
// on save.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expenses/internal/backend"
	"expenses/internal/budget"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/records"
)

type Session struct {
	id      uuid.UUID
	store   backend.Backend
	clock   Clock
	logger  *applog.Logger
	records []core.Expense
	budget  core.Budget
	dirty   bool
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Open loads the records and the budget from store. Errors in persisted
// data abort the open.
func Open(ctx context.Context, store backend.Backend, opts ...Option) (*Session, error) {
	s := &Session{
		id:     uuid.New(),
		store:  store,
		clock:  SystemClock{},
		logger: applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentSession).With(applog.FieldSessionID, s.id.String())

	items, err := store.LoadExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	b, err := store.LoadBudget(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	s.records, s.budget = items, b

	s.logger.InfoContext(ctx, "Session opened",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldCount, len(items),
		applog.FieldBudget, b.String())
	return s, nil
}

func (s *Session) ID() string {
	return s.id.String()
}

// Expenses returns a copy of the current records.
func (s *Session) Expenses() []core.Expense {
	return append([]core.Expense(nil), s.records...)
}

func (s *Session) Budget() core.Budget {
	return s.budget
}

// Dirty reports whether there are changes not yet saved.
func (s *Session) Dirty() bool {
	return s.dirty
}

// AddExpense validates and appends a new record.
func (s *Session) AddExpense(date, category string, amount decimal.Decimal, description string) (core.Expense, error) {
	next, err := records.Append(s.records, date, category, amount, description)
	if err != nil {
		return core.Expense{}, err
	}
	s.records = next
	s.dirty = true

	added := next[len(next)-1]
	s.logger.Debug("Expense added",
		applog.FieldOperation, applog.OpAppend,
		applog.FieldDate, added.Date,
		applog.FieldCategory, added.Category,
		applog.FieldAmount, added.Amount.String())
	return added, nil
}

// View renders the records for display.
func (s *Session) View() []string {
	return records.Render(s.records)
}

// SetBudget replaces the budget. Negative values are rejected and the
// current budget is kept.
func (s *Session) SetBudget(v decimal.Decimal) error {
	b, err := budget.Set(s.budget, v)
	if err != nil {
		return err
	}
	s.budget = b
	s.dirty = true
	s.logger.Debug("Budget set", applog.FieldOperation, applog.OpSet, applog.FieldBudget, b.String())
	return nil
}

// Track compares this month's spending with the budget. It returns
// budget.ErrBudgetNotSet when no budget exists yet.
func (s *Session) Track() (budget.Tracking, []budget.Diagnostic, error) {
	t, diags, err := budget.TrackMonth(s.records, s.budget, s.clock.Now())
	if err != nil {
		return budget.Tracking{}, nil, err
	}
	for _, d := range diags {
		s.logger.Warn("Skipped expense while tracking",
			applog.FieldIndex, d.Index,
			applog.FieldDate, d.Expense.Date,
			applog.FieldError, d.Err)
	}
	s.logger.Debug("Month tracked",
		applog.FieldOperation, applog.OpTrack,
		applog.FieldYear, t.Year,
		applog.FieldMonth, t.Month,
		applog.FieldTotal, t.Total.String(),
		applog.FieldExceeded, t.Exceeded)
	return t, diags, nil
}

// Save writes the records and the budget back to the backend.
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.SaveExpenses(ctx, s.records); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	if err := s.store.SaveBudget(ctx, s.budget); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	s.dirty = false
	s.logger.InfoContext(ctx, "Session saved",
		applog.FieldOperation, applog.OpSave,
		applog.FieldCount, len(s.records))
	return nil
}
