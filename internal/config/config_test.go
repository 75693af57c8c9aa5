package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 800*time.Millisecond, cfg.Board.MinUpdating)
	require.Equal(t, 2*time.Second, cfg.Board.SavedFor)
	require.Equal(t, 256, cfg.Notifications.Backlog)
	require.Empty(t, cfg.LLM.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PIPELINE_CONFIG", "")
	t.Setenv("PIPELINE_DATABASE_DRIVER", "sqlite")
	t.Setenv("PIPELINE_DATABASE_DSN", "board.db")
	t.Setenv("PIPELINE_BOARD_MIN_UPDATING", "250ms")
	t.Setenv("PIPELINE_BOARD_JOB_ID", "42")
	t.Setenv("GEMINI_API_KEY", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "board.db", cfg.Database.DSN)
	require.Equal(t, 250*time.Millisecond, cfg.Board.MinUpdating)
	require.Equal(t, uint(42), cfg.Board.JobID)
	require.Equal(t, "abc", cfg.LLM.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  driver: sqlite
  dsn: file.db
notifications:
  backlog: 16
`), 0o600))
	t.Setenv("PIPELINE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, 16, cfg.Notifications.Backlog)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{
		Database:      DatabaseConfig{Driver: "mysql", DSN: "x"},
		Notifications: NotificationsConfig{Backlog: 1},
	}
	require.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	require.NoError(t, cfg.Validate())

	cfg.Board.SavedFor = -time.Second
	require.Error(t, cfg.Validate())
}
