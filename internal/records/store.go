// Package records persists expense records to a CSV file and renders them.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"expenses/internal/core"
)

// Columns is the fixed header and field order of the expense file.
var Columns = []string{"date", "category", "amount", "description"}

var columnFields = []core.Field{core.FieldDate, core.FieldCategory, core.FieldAmount, core.FieldDescription}

// Options controls how malformed persisted rows are treated.
type Options struct {
	// SkipMalformed drops rows whose amount is not numeric and reports
	// them instead of failing the whole load.
	SkipMalformed bool
}

// RowError reports a malformed data row. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Load reads all records from path. A missing file yields an empty slice.
// A non-numeric amount on any row fails the whole load.
func Load(path string) ([]core.Expense, error) {
	out, _, err := LoadWithOptions(path, Options{})
	return out, err
}

// LoadWithOptions is Load with a configurable malformed-row policy. When
// opts.SkipMalformed is set, the skipped rows are returned alongside the
// records.
func LoadWithOptions(path string, opts Options) ([]core.Expense, []*RowError, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Expense{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open expenses file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return []core.Expense{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index := headerIndex(header)

	out := []core.Expense{}
	var skipped []*RowError
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read expenses file: %w", err)
		}
		line, _ := r.FieldPos(0)

		e, err := parseRow(row, index)
		if err != nil {
			rowErr := &RowError{Line: line, Err: err}
			if !opts.SkipMalformed {
				return nil, nil, rowErr
			}
			skipped = append(skipped, rowErr)
			continue
		}
		out = append(out, e)
	}
	return out, skipped, nil
}

// Save overwrites path with the header followed by one row per record.
func Save(path string, records []core.Expense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create expenses file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range records {
		if err := w.Write(formatRow(e)); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush expenses file: %w", err)
	}
	return f.Close()
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return index
}

func parseRow(row []string, index map[string]int) (core.Expense, error) {
	var (
		e      core.Expense
		values [4]string
	)
	for i, name := range Columns {
		col, ok := index[name]
		if !ok || col >= len(row) {
			e.Missing |= columnFields[i]
			continue
		}
		// An empty date, category or amount can never have been entered,
		// so it reads back as missing. Description may be empty.
		if columnFields[i] != core.FieldDescription && strings.TrimSpace(row[col]) == "" {
			e.Missing |= columnFields[i]
			continue
		}
		values[i] = row[col]
	}
	e.Date, e.Category, e.Description = values[0], values[1], values[3]
	if e.Missing&core.FieldAmount == 0 {
		amount, err := core.ParseAmount(values[2])
		if err != nil {
			return core.Expense{}, err
		}
		e.Amount = amount
	}
	return e, nil
}

// formatRow writes missing fields as empty values, which load back as
// missing. Trailing missing fields are dropped so a short row stays short.
func formatRow(e core.Expense) []string {
	row := []string{e.Date, e.Category, e.Amount.String(), e.Description}
	n := len(row)
	for i := range row {
		if e.Missing&columnFields[i] != 0 {
			row[i] = ""
		}
	}
	for n > 0 && e.Missing&columnFields[n-1] != 0 {
		n--
	}
	return row[:n]
}
