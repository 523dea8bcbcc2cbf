package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/budget"
	"expenses/internal/core"
	"expenses/internal/session"
)

// ErrInputClosed is returned when input ends before the user chose to exit.
// Unsaved changes are lost.
var ErrInputClosed = errors.New("input closed before exit")

type inputLine struct {
	text string
	err  error
}

// Menu is the interactive text front end for a session.
type Menu struct {
	session *session.Session
	in      *bufio.Scanner
	out     io.Writer
	lines   chan inputLine
}

func NewMenu(s *session.Session, in io.Reader, out io.Writer) *Menu {
	return &Menu{session: s, in: bufio.NewScanner(in), out: out}
}

// Run shows the menu until the user exits. Exit saves before returning.
// Cancelling ctx stops the menu at the next prompt without saving.
func (m *Menu) Run(ctx context.Context) error {
	if m.lines == nil {
		m.lines = make(chan inputLine)
		go m.readLines()
	}
	err := m.loop(ctx)
	if err != nil && m.session.Dirty() {
		m.println("\nUnsaved changes were discarded.")
	}
	return err
}

// readLines feeds input lines to prompt so a blocked read never holds up
// cancellation.
func (m *Menu) readLines() {
	defer close(m.lines)
	for m.in.Scan() {
		m.lines <- inputLine{text: m.in.Text()}
	}
	if err := m.in.Err(); err != nil {
		m.lines <- inputLine{err: fmt.Errorf("read input: %w", err)}
	}
}

func (m *Menu) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.println("\nPersonal Expense Tracker")
		m.println("1. Add expense")
		m.println("2. View expenses")
		m.println("3. Track budget")
		m.println("4. Save expenses and budget")
		m.println("5. Exit")
		choice, err := m.prompt(ctx, "Enter your choice (1-5): ")
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.addExpense(ctx)
		case "2":
			m.viewExpenses()
		case "3":
			err = m.trackBudget(ctx)
		case "4":
			if err := m.session.Save(ctx); err != nil {
				m.printf("Failed to save: %v\n", err)
				continue
			}
			m.println("Expenses and budget saved successfully.")
		case "5":
			if err := m.session.Save(ctx); err != nil {
				return err
			}
			m.println("Expenses and budget saved. Exiting program.")
			return nil
		default:
			m.println("Invalid choice. Please enter a number between 1 and 5.")
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) addExpense(ctx context.Context) error {
	var date string
	for {
		v, err := m.prompt(ctx, "Enter the date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		if _, err := core.ParseDate(v); err != nil {
			m.println("Invalid date format. Please use YYYY-MM-DD.")
			continue
		}
		date = v
		break
	}

	var category string
	for {
		v, err := m.prompt(ctx, "Enter the category: ")
		if err != nil {
			return err
		}
		if strings.TrimSpace(v) == "" {
			m.println("Category cannot be empty.")
			continue
		}
		category = v
		break
	}

	var amount decimal.Decimal
	for {
		v, err := m.prompt(ctx, "Enter the amount: ")
		if err != nil {
			return err
		}
		d, err := core.ParseAmount(v)
		if err != nil {
			m.println("Invalid amount. Please enter a number.")
			continue
		}
		if !d.IsPositive() {
			m.println("Amount must be positive.")
			continue
		}
		amount = d
		break
	}

	description, err := m.prompt(ctx, "Enter a description: ")
	if err != nil {
		return err
	}

	if _, err := m.session.AddExpense(date, category, amount, description); err != nil {
		m.printf("Expense not added: %v\n", err)
		return nil
	}
	m.println("Expense added successfully.")
	return nil
}

func (m *Menu) viewExpenses() {
	for _, line := range m.session.View() {
		m.println(line)
	}
}

func (m *Menu) trackBudget(ctx context.Context) error {
	t, diags, err := m.session.Track()
	if errors.Is(err, budget.ErrBudgetNotSet) {
		m.println("Please set your monthly budget first.")
		return m.setBudget(ctx)
	}
	if err != nil {
		return err
	}
	for _, d := range diags {
		m.println(d.String())
	}
	for _, line := range t.Lines() {
		m.println(line)
	}
	return nil
}

func (m *Menu) setBudget(ctx context.Context) error {
	for {
		v, err := m.prompt(ctx, "Enter your monthly budget: ")
		if err != nil {
			return err
		}
		d, err := core.ParseAmount(v)
		if err != nil {
			m.println("Invalid input. Please enter a number.")
			continue
		}
		if err := m.session.SetBudget(d); err != nil {
			m.println("Budget cannot be negative.")
			continue
		}
		m.printf("Monthly budget set to %s\n", core.FormatAmount(d))
		return nil
	}
}

func (m *Menu) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(m.out, label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-m.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return l.text, l.err
	}
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
