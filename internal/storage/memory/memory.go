// Package memory is a non-persistent backend. It can be seeded from the
// regular files, which it reads but never writes.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expenses/internal/budget"
	"expenses/internal/core"
	"expenses/internal/records"
)

type Store struct {
	mu     sync.Mutex
	items  []core.Expense
	budget core.Budget
	saves  int
}

func New(items []core.Expense, b core.Budget) *Store {
	return &Store{items: append([]core.Expense(nil), items...), budget: b}
}

// NewFromFiles seeds the store from an expenses file and a budget file.
// Missing files yield an empty store. Rows dropped under opts.SkipMalformed
// are returned so the caller can report them.
func NewFromFiles(expensesPath, budgetPath string, opts records.Options) (*Store, []*records.RowError, error) {
	items, skipped, err := records.LoadWithOptions(expensesPath, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("seed expenses: %w", err)
	}
	b, err := budget.Load(budgetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("seed budget: %w", err)
	}
	return New(items, b), skipped, nil
}

func (s *Store) LoadExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) SaveExpenses(_ context.Context, items []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Expense(nil), items...)
	s.saves++
	return nil
}

func (s *Store) LoadBudget(_ context.Context) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget, nil
}

// SaveBudget keeps b; an unset budget leaves the stored one untouched.
func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	if !b.IsSet() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = b
	return nil
}

// Saves reports how many times SaveExpenses was called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
