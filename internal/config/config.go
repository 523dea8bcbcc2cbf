package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	applog "expenses/internal/log"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var validBackends = []string{BackendCSV, BackendSQLite, BackendMemory}

type Config struct {
	// Files. Relative names resolve against DataDir.
	DataDir      string
	ExpensesFile string
	BudgetFile   string

	// Storage
	DataBackend  string
	SQLiteDBPath string

	// Malformed persisted rows are skipped instead of aborting startup.
	SkipMalformed bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		DataDir:      getEnv("EXPENSES_DATA_DIR", defaultDataDir()),
		ExpensesFile: getEnv("EXPENSES_FILE", "expenses.csv"),
		BudgetFile:   getEnv("BUDGET_FILE", "budget.csv"),

		DataBackend:  getEnv("DATA_BACKEND", BackendCSV),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "expenses.db"),

		SkipMalformed: getEnvBool("EXPENSES_SKIP_MALFORMED", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ExpensesPath returns the resolved path of the expenses file.
func (c *Config) ExpensesPath() string {
	return c.resolve(c.ExpensesFile)
}

// BudgetPath returns the resolved path of the budget file.
func (c *Config) BudgetPath() string {
	return c.resolve(c.BudgetFile)
}

// SQLitePath returns the resolved path of the SQLite database.
func (c *Config) SQLitePath() string {
	return c.resolve(c.SQLiteDBPath)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || c.DataDir == "" {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch c.DataBackend {
	case BackendCSV:
		if strings.TrimSpace(c.ExpensesFile) == "" {
			errors = append(errors, "expenses file cannot be empty when using csv backend")
		}
		if strings.TrimSpace(c.BudgetFile) == "" {
			errors = append(errors, "budget file cannot be empty when using csv backend")
		}
		if c.ExpensesFile != "" && c.ExpensesPath() == c.BudgetPath() {
			errors = append(errors, fmt.Sprintf("expenses and budget files must differ, both resolve to '%s'", c.ExpensesPath()))
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	if c.DataBackend == BackendCSV || c.DataBackend == BackendSQLite {
		// Check if directory exists or can be created
		dir := c.DataDir
		if c.DataBackend == BackendSQLite {
			dir = filepath.Dir(c.SQLitePath())
		}
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create data directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// defaultDataDir is the directory holding the running executable, or the
// working directory when that cannot be determined.
func defaultDataDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
