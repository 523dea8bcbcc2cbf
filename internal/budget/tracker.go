package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

var (
	// ErrBudgetNotSet is returned by TrackMonth when no budget exists yet.
	// Callers are expected to obtain one and retry.
	ErrBudgetNotSet = errors.New("monthly budget not set")

	ErrIncompleteEntry = errors.New("incomplete entry")
)

// Diagnostic describes a record skipped during aggregation.
type Diagnostic struct {
	Index   int
	Expense core.Expense
	Err     error
}

func (d Diagnostic) String() string {
	e := d.Expense
	msg := "Invalid date format for expense"
	if errors.Is(d.Err, ErrIncompleteEntry) {
		msg = "Incomplete expense entry skipped"
	}
	amount := e.Amount.String()
	if e.Missing&core.FieldAmount != 0 {
		amount = "missing"
	}
	return fmt.Sprintf("%s: date=%q category=%q amount=%s description=%q",
		msg, e.Date, e.Category, amount, e.Description)
}

// Tracking is the month-to-date comparison of spending against the budget.
// Exactly one of Remaining and Excess is meaningful, selected by Exceeded.
type Tracking struct {
	core.MonthOverview
	Budget    decimal.Decimal
	Remaining decimal.Decimal
	Excess    decimal.Decimal
	Exceeded  bool
}

// Set replaces the current budget with value. A negative value is rejected
// and current is returned unchanged.
func Set(current core.Budget, value decimal.Decimal) (core.Budget, error) {
	b, err := core.NewBudget(value)
	if err != nil {
		return current, err
	}
	return b, nil
}

// TrackMonth sums the records dated in today's calendar month and compares
// the total with b. Records whose date does not parse are skipped and
// reported; they never abort the aggregation.
func TrackMonth(records []core.Expense, b core.Budget, today time.Time) (Tracking, []Diagnostic, error) {
	if !b.IsSet() {
		return Tracking{}, nil, ErrBudgetNotSet
	}

	var (
		diags []Diagnostic
		total = decimal.Zero
		order []string
		byCat = map[string]decimal.Decimal{}
	)
	for i, e := range records {
		if e.Missing&(core.FieldDate|core.FieldAmount) != 0 {
			diags = append(diags, Diagnostic{Index: i, Expense: e, Err: ErrIncompleteEntry})
			continue
		}
		d, err := core.ParseDate(e.Date)
		if err != nil {
			diags = append(diags, Diagnostic{Index: i, Expense: e, Err: err})
			continue
		}
		if !d.SameMonth(today) {
			continue
		}
		total = total.Add(e.Amount)
		if _, ok := byCat[e.Category]; !ok {
			order = append(order, e.Category)
			byCat[e.Category] = decimal.Zero
		}
		byCat[e.Category] = byCat[e.Category].Add(e.Amount)
	}

	t := Tracking{
		MonthOverview: core.MonthOverview{
			Year:  today.Year(),
			Month: int(today.Month()),
			Total: total,
		},
		Budget: b.Value(),
	}
	for _, name := range order {
		t.ByCategory = append(t.ByCategory, core.CategoryAmount{Name: name, Amount: byCat[name]})
	}
	if total.GreaterThan(t.Budget) {
		t.Exceeded = true
		t.Excess = total.Sub(t.Budget)
	} else {
		t.Remaining = t.Budget.Sub(total)
	}
	return t, diags, nil
}

// Lines renders the report shown to the user.
func (t Tracking) Lines() []string {
	lines := []string{
		fmt.Sprintf("Monthly Budget: %s", core.FormatAmount(t.Budget)),
		fmt.Sprintf("Total Expenses (this month): %s", core.FormatAmount(t.Total)),
	}
	if t.Exceeded {
		lines = append(lines, fmt.Sprintf("You have exceeded your budget by %s!", core.FormatAmount(t.Excess)))
	} else {
		lines = append(lines, fmt.Sprintf("You have %s left for the month.", core.FormatAmount(t.Remaining)))
	}
	return lines
}

// CategoryLines renders the per-category breakdown, one line per category
// in first-seen order.
func (t Tracking) CategoryLines() []string {
	lines := make([]string, 0, len(t.ByCategory))
	for _, c := range t.ByCategory {
		name := c.Name
		if strings.TrimSpace(name) == "" {
			name = "(uncategorized)"
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", name, core.FormatAmount(c.Amount)))
	}
	return lines
}
