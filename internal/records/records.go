package records

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

const (
	emptyLine      = "No expenses recorded."
	incompleteLine = "Incomplete expense entry found."
)

// Append validates a new entry and returns records with it added at the
// end. The input slice is never modified.
func Append(records []core.Expense, date, category string, amount decimal.Decimal, description string) ([]core.Expense, error) {
	e := core.Expense{
		Date:        strings.TrimSpace(date),
		Category:    strings.TrimSpace(category),
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
	if err := e.Validate(); err != nil {
		return records, err
	}
	n := len(records)
	return append(records[:n:n], e), nil
}

// Render returns one display line per record, in order.
func Render(records []core.Expense) []string {
	if len(records) == 0 {
		return []string{emptyLine}
	}
	lines := make([]string, 0, len(records))
	for _, e := range records {
		lines = append(lines, RenderOne(e))
	}
	return lines
}

// RenderOne formats a single record.
func RenderOne(e core.Expense) string {
	if !e.Complete() {
		return incompleteLine
	}
	return fmt.Sprintf("Date: %s, Category: %s, Amount: %s, Description: %s",
		e.Date, e.Category, core.FormatAmount(e.Amount), e.Description)
}
