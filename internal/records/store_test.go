package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sample() []core.Expense {
	return []core.Expense{
		{Date: "2025-01-03", Category: "Food", Amount: decimal.RequireFromString("12.5"), Description: "lunch"},
		{Date: "2025-01-03", Category: "Food", Amount: decimal.RequireFromString("12.5"), Description: "lunch"},
		{Date: "2025-01-10", Category: "Transport, city", Amount: decimal.RequireFromString("2.35"), Description: `"quoted"`},
		{Date: "2025-02-01", Category: "Rent", Amount: decimal.NewFromInt(800), Description: ""},
	}
}

func assertSameRecords(t *testing.T, want, got []core.Expense) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date, "record %d date", i)
		assert.Equal(t, want[i].Category, got[i].Category, "record %d category", i)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "record %d amount: want %s got %s", i, want[i].Amount, got[i].Amount)
		assert.Equal(t, want[i].Description, got[i].Description, "record %d description", i)
		assert.Equal(t, want[i].Missing, got[i].Missing, "record %d missing", i)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	want := sample()

	require.NoError(t, Save(path, want))
	first, err := Load(path)
	require.NoError(t, err)
	assertSameRecords(t, want, first)

	require.NoError(t, Save(path, first))
	second, err := Load(path)
	require.NoError(t, err)
	assertSameRecords(t, want, second)
}

func TestSaveWritesHeaderAndFixedOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, Save(path, sample()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,category,amount,description\n2025-01-03,Food,12.5,lunch\n", string(data))
}

func TestSaveEmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "stale content\n")

	require.NoError(t, Save(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,category,amount,description\n", string(data))
}

func TestSaveFailsOnUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "expenses.csv")
	assert.Error(t, Save(path, sample()))
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadColumnsByHeaderName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "amount,description,date,category\n9.99,book,2025-03-02,Leisure\n")

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-02", got[0].Date)
	assert.Equal(t, "Leisure", got[0].Category)
	assert.Equal(t, "9.99", got[0].Amount.String())
	assert.Equal(t, "book", got[0].Description)
}

func TestLoadNonNumericAmountFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,category,amount,description\n2025-01-01,Food,1,ok\n2025-01-02,Food,ten,bad\n")

	got, err := Load(path)
	assert.Nil(t, got)
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
}

func TestLoadSkipMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,category,amount,description\n2025-01-01,Food,1,ok\n2025-01-02,Food,ten,bad\n2025-01-03,Food,2,ok\n")

	got, skipped, err := LoadWithOptions(path, Options{SkipMalformed: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-03", got[1].Date)
	require.Len(t, skipped, 1)
	assert.Equal(t, 3, skipped[0].Line)
}

func TestLoadKeepsMalformedDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,category,amount,description\nyesterday,Food,4,snack\n")

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "yesterday", got[0].Date)
}

func TestLoadShortRowIsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,category,amount,description\n2025-01-01,Food,3\n2025-01-02,Food\n")

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.FieldDescription, got[0].Missing)
	assert.Equal(t, core.FieldAmount|core.FieldDescription, got[1].Missing)

	// short rows survive a save unchanged
	require.NoError(t, Save(path, got))
	again, err := Load(path)
	require.NoError(t, err)
	assertSameRecords(t, got, again)
}

func TestLoadMissingMiddleColumnStaysIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,amount,description\n2025-01-01,5,x\n")

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.FieldCategory, got[0].Missing)
	assert.Equal(t, []string{"Incomplete expense entry found."}, Render(got))

	require.NoError(t, Save(path, got))
	again, err := Load(path)
	require.NoError(t, err)
	assertSameRecords(t, got, again)
	assert.Equal(t, []string{"Incomplete expense entry found."}, Render(again))
}

func TestLoadEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	mustWrite(t, path, "date,category,amount,description\n2025-01-01,,,\n,Food,2,\n")

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.FieldCategory|core.FieldAmount, got[0].Missing)
	assert.Equal(t, core.FieldDate, got[1].Missing)
	assert.Empty(t, got[1].Description)
}
