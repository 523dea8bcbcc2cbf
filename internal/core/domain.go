package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk and entry format of expense dates.
const DateLayout = "2006-01-02"

// Field identifies one of the four columns of an expense record.
type Field uint8

const (
	FieldDate Field = 1 << iota
	FieldCategory
	FieldAmount
	FieldDescription
)

type (
	Date struct {
		time.Time
	}

	// Expense is one logged expense. Date is kept as entered so records
	// with a malformed persisted date still load and render.
	Expense struct {
		Date        string
		Category    string
		Amount      decimal.Decimal
		Description string
		// Missing marks fields that were absent in the source row.
		Missing Field
	}

	// Budget is an optional monthly spending ceiling. The zero value is unset.
	Budget struct {
		value decimal.Decimal
		set   bool
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyCategory  = errors.New("empty category")
	ErrNegativeBudget = errors.New("budget cannot be negative")
	ErrInvalidBudget  = errors.New("invalid budget")
)

// ParseDate parses s as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// SameMonth reports whether d falls in the calendar year and month of t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == t.Month()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Complete reports whether all four fields were present.
func (e Expense) Complete() bool {
	return e.Missing == 0
}

// Validate applies the entry-time contract. Loaded records are not
// re-validated.
func (e Expense) Validate() error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return nil
}

// NewBudget returns a set budget. Zero is accepted, negatives are not.
func NewBudget(v decimal.Decimal) (Budget, error) {
	if v.IsNegative() {
		return Budget{}, ErrNegativeBudget
	}
	return Budget{value: v, set: true}, nil
}

// RestoreBudget returns a set budget read back from storage. Range checks
// only apply at entry time.
func RestoreBudget(v decimal.Decimal) Budget {
	return Budget{value: v, set: true}
}

// IsSet reports whether a budget value has been provided.
func (b Budget) IsSet() bool {
	return b.set
}

// Value returns the budget amount; zero when unset.
func (b Budget) Value() decimal.Decimal {
	return b.value
}

func (b Budget) String() string {
	if !b.set {
		return "unset"
	}
	return b.value.String()
}
