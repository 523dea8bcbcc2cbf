package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(dir string) Config {
	return Config{
		DataDir:      dir,
		ExpensesFile: "expenses.csv",
		BudgetFile:   "budget.csv",
		DataBackend:  BackendCSV,
		SQLiteDBPath: "expenses.db",
		LogLevel:     "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid csv backend config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid sqlite backend config",
			mutate: func(c *Config) { c.DataBackend = BackendSQLite },
		},
		{
			name:   "valid memory backend config",
			mutate: func(c *Config) { c.DataBackend = BackendMemory; c.ExpensesFile = "" },
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [csv sqlite memory]",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "csv backend missing expenses file",
			mutate:      func(c *Config) { c.ExpensesFile = " " },
			wantErr:     true,
			errorString: "expenses file cannot be empty when using csv backend",
		},
		{
			name:        "csv backend missing budget file",
			mutate:      func(c *Config) { c.BudgetFile = "" },
			wantErr:     true,
			errorString: "budget file cannot be empty when using csv backend",
		},
		{
			name:        "expenses and budget share a file",
			mutate:      func(c *Config) { c.BudgetFile = "expenses.csv" },
			wantErr:     true,
			errorString: "expenses and budget files must differ",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.DataBackend = BackendSQLite; c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig(dir)
			tt.mutate(&c)

			err := c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	c := validConfig(t.TempDir())
	c.DataBackend = "nope"
	c.LogLevel = "nope"

	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "\n- "))
}

func TestConfig_ValidateCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	c := validConfig(dir)

	require.NoError(t, c.Validate())
	assert.DirExists(t, dir)
}

func TestConfig_Paths(t *testing.T) {
	c := validConfig("/srv/expenses")
	assert.Equal(t, filepath.Join("/srv/expenses", "expenses.csv"), c.ExpensesPath())
	assert.Equal(t, filepath.Join("/srv/expenses", "budget.csv"), c.BudgetPath())
	assert.Equal(t, filepath.Join("/srv/expenses", "expenses.db"), c.SQLitePath())

	abs := filepath.Join(t.TempDir(), "elsewhere.csv")
	c.ExpensesFile = abs
	assert.Equal(t, abs, c.ExpensesPath())
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"EXPENSES_DATA_DIR", "EXPENSES_FILE", "BUDGET_FILE", "DATA_BACKEND", "SQLITE_DB_PATH", "EXPENSES_SKIP_MALFORMED", "LOG_LEVEL"} {
			t.Setenv(key, "")
		}

		cfg := Load()
		assert.Equal(t, "expenses.csv", cfg.ExpensesFile)
		assert.Equal(t, "budget.csv", cfg.BudgetFile)
		assert.Equal(t, BackendCSV, cfg.DataBackend)
		assert.Equal(t, "expenses.db", cfg.SQLiteDBPath)
		assert.False(t, cfg.SkipMalformed)
		assert.Equal(t, "info", cfg.LogLevel)

		exe, err := os.Executable()
		require.NoError(t, err)
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		assert.Equal(t, filepath.Dir(exe), cfg.DataDir)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("EXPENSES_DATA_DIR", "/tmp/exp")
		t.Setenv("EXPENSES_FILE", "spend.csv")
		t.Setenv("BUDGET_FILE", "limit.txt")
		t.Setenv("DATA_BACKEND", "sqlite")
		t.Setenv("SQLITE_DB_PATH", "db/exp.db")
		t.Setenv("EXPENSES_SKIP_MALFORMED", "true")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()
		assert.Equal(t, "/tmp/exp", cfg.DataDir)
		assert.Equal(t, "spend.csv", cfg.ExpensesFile)
		assert.Equal(t, "limit.txt", cfg.BudgetFile)
		assert.Equal(t, BackendSQLite, cfg.DataBackend)
		assert.Equal(t, filepath.Join("/tmp/exp", "db", "exp.db"), cfg.SQLitePath())
		assert.True(t, cfg.SkipMalformed)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid bool falls back to default", func(t *testing.T) {
		t.Setenv("EXPENSES_SKIP_MALFORMED", "sometimes")
		assert.False(t, Load().SkipMalformed)
	})
}
