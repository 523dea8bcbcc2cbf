package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	"expenses/internal/records"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New(nil, core.Budget{})

	items := []core.Expense{{Date: "2025-01-01", Category: "A", Amount: decimal.NewFromInt(1)}}
	require.NoError(t, s.SaveExpenses(ctx, items))
	items[0].Category = "changed"

	got, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Category, "store must keep its own copy")
	assert.Equal(t, 1, s.Saves())
}

func TestMemoryStoreBudget(t *testing.T) {
	ctx := context.Background()
	b, err := core.NewBudget(decimal.NewFromInt(100))
	require.NoError(t, err)
	s := New(nil, b)

	require.NoError(t, s.SaveBudget(ctx, core.Budget{}))
	got, err := s.LoadBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100", got.String())
}

func TestNewFromFilesSeedsWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	expPath := filepath.Join(dir, "expenses.csv")
	budgetPath := filepath.Join(dir, "budget.csv")

	// No files -> empty store
	s, skipped, err := NewFromFiles(expPath, budgetPath, records.Options{})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	got, _ := s.LoadExpenses(context.Background())
	assert.Empty(t, got)

	content := "date,category,amount,description\n2025-01-01,Food,3,bread\n"
	require.NoError(t, os.WriteFile(expPath, []byte(content), 0o644))
	require.NoError(t, os.WriteFile(budgetPath, []byte("40"), 0o644))

	s, _, err = NewFromFiles(expPath, budgetPath, records.Options{})
	require.NoError(t, err)
	got, _ = s.LoadExpenses(context.Background())
	require.Len(t, got, 1)
	b, _ := s.LoadBudget(context.Background())
	assert.Equal(t, "40", b.String())

	require.NoError(t, s.SaveExpenses(context.Background(), nil))
	data, err := os.ReadFile(expPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestNewFromFilesReportsSkippedRows(t *testing.T) {
	expPath := filepath.Join(t.TempDir(), "expenses.csv")
	content := "date,category,amount,description\n2025-01-01,Food,abc,bad\n2025-01-02,Food,2,ok\n"
	require.NoError(t, os.WriteFile(expPath, []byte(content), 0o644))

	_, _, err := NewFromFiles(expPath, filepath.Join(filepath.Dir(expPath), "budget.csv"), records.Options{})
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	s, skipped, err := NewFromFiles(expPath, filepath.Join(filepath.Dir(expPath), "budget.csv"), records.Options{SkipMalformed: true})
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Line)
	got, _ := s.LoadExpenses(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Description)
}
