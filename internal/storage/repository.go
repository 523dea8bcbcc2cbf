// Package storage is the SQLite backend for expense records and the budget.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	applog "expenses/internal/log"

	_ "modernc.org/sqlite"
)

const budgetKey = "monthly_budget"

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// LoadExpenses returns all stored records in insertion order.
func (r *SQLiteRepository) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, category, amount, description FROM expenses ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		var (
			id                                  int64
			date, category, amount, description sql.NullString
		)
		if err := rows.Scan(&id, &date, &category, &amount, &description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		var e core.Expense
		e.Date = fromNull(date, core.FieldDate, &e.Missing)
		e.Category = fromNull(category, core.FieldCategory, &e.Missing)
		e.Description = fromNull(description, core.FieldDescription, &e.Missing)
		if amount.Valid {
			v, err := core.ParseAmount(amount.String)
			if err != nil {
				return nil, fmt.Errorf("expense %d: %w", id, err)
			}
			e.Amount = v
		} else {
			e.Missing |= core.FieldAmount
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// SaveExpenses replaces every stored record with records, keeping order.
func (r *SQLiteRepository) SaveExpenses(ctx context.Context, records []core.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, date, category, amount, description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range records {
		_, err := stmt.ExecContext(ctx, i,
			toNull(e.Date, e.Missing&core.FieldDate != 0),
			toNull(e.Category, e.Missing&core.FieldCategory != 0),
			toNull(e.Amount.String(), e.Missing&core.FieldAmount != 0),
			toNull(e.Description, e.Missing&core.FieldDescription != 0),
		)
		if err != nil {
			return fmt.Errorf("insert expense %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expenses: %w", err)
	}

	slog.DebugContext(ctx, "Expenses saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldCount, len(records),
		applog.FieldPath, r.path)
	return nil
}

// LoadBudget returns the stored budget, or an unset budget if none exists.
func (r *SQLiteRepository) LoadBudget(ctx context.Context) (core.Budget, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, budgetKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, nil
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("query budget: %w", err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return core.Budget{}, nil
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: %q", core.ErrInvalidBudget, value)
	}
	return core.RestoreBudget(v), nil
}

// SaveBudget stores b. An unset budget leaves the stored value untouched.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	if !b.IsSet() {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		budgetKey, b.Value().String())
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func fromNull(s sql.NullString, f core.Field, missing *core.Field) string {
	if !s.Valid {
		*missing |= f
		return ""
	}
	return s.String
}

func toNull(s string, missing bool) sql.NullString {
	return sql.NullString{String: s, Valid: !missing}
}
