// Package budget persists the monthly budget and tracks month-to-date
// spending against it.
package budget

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Load reads the budget from the first line of path. A missing file or an
// empty first line yields an unset budget.
func Load(path string) (core.Budget, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Budget{}, nil
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("open budget file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return core.Budget{}, fmt.Errorf("read budget file: %w", err)
		}
		return core.Budget{}, nil
	}
	line := strings.TrimSpace(sc.Text())
	if line == "" {
		return core.Budget{}, nil
	}
	v, err := decimal.NewFromString(line)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: %q", core.ErrInvalidBudget, line)
	}
	return core.RestoreBudget(v), nil
}

// Save overwrites path with the budget value. An unset budget writes
// nothing and leaves any existing file untouched.
func Save(path string, b core.Budget) error {
	if !b.IsSet() {
		return nil
	}
	if err := os.WriteFile(path, []byte(b.Value().String()), 0o644); err != nil {
		return fmt.Errorf("write budget file: %w", err)
	}
	return nil
}
