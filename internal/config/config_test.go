package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when file is missing", func(t *testing.T) {
		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, Defaults(), cfg)
	})

	t.Run("should override defaults with yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := "db:\n  host: db.internal\n  port: 6543\nconsolidation:\n  locale: en-US\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "orcaposte", cfg.Database.Name)
		assert.Equal(t, "en-US", cfg.Consolidation.Locale)
	})

	t.Run("should override file with environment", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db:\n  user: from_file\n"), 0o600))
		t.Setenv("ORCAPOSTE_DB_USER", "from_env")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Database.User)
	})
}
