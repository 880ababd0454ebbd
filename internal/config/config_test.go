package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "db.local"
user = "school"
dbname = "scheduling"

[scheduling]
timezone = "Europe/Berlin"
`)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "host=db.local port=6543 user=school password= dbname=scheduling sslmode=disable", cfg.Database.DSN())

	loc, err := cfg.Scheduling.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"timezone": "[scheduling]\ntimezone = \"Mars/Olympus\"\n",
		"driver":   "[storage]\ndriver = \"sqlite\"\n",
		"cron":     "[reminders]\nenabled = true\nschedule = \"every minute\"\n",
		"notify":   "[notifications]\nenabled = true\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	_, err := Load(writeConfig(t, ""))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
