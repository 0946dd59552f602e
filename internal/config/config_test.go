package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"WEIGHT_CONFIG", "WEIGHT_STORE", "WEIGHT_FILE", "DATABASE_URL", "WEIGHT_LOG_LEVEL", "WEIGHT_UNIT"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weighttracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store:
  driver: sqlite
  path: /var/lib/weights.db
log:
  level: debug
unit: lb
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/weights.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "lb", cfg.Unit)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "unit: lb\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverCSV, cfg.Store.Driver)
	assert.Equal(t, "data.csv", cfg.Store.Path)
	assert.Equal(t, "lb", cfg.Unit)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEIGHT_CONFIG", writeConfig(t, "store:\n  driver: memory\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "store: [unclosed\n"))
		require.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "store:\n  driver: sqlite\n  path: file.db\n")
	t.Setenv("WEIGHT_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/weights")
	t.Setenv("WEIGHT_LOG_LEVEL", "info")
	t.Setenv("WEIGHT_UNIT", "lb")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "file.db", cfg.Store.Path)
	assert.Equal(t, "postgres://localhost/weights", cfg.Store.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "lb", cfg.Unit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Store = StoreConfig{Driver: DriverMemory} }, false},
		{"postgres with dsn", func(c *Config) { c.Store = StoreConfig{Driver: DriverPostgres, DSN: "postgres://x"} }, false},
		{"postgres without dsn", func(c *Config) { c.Store = StoreConfig{Driver: DriverPostgres} }, true},
		{"sqlite without path", func(c *Config) { c.Store = StoreConfig{Driver: DriverSQLite} }, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }, true},
		{"empty unit", func(c *Config) { c.Unit = "" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
