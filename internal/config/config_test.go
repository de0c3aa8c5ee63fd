package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Media: MediaConfig{
			MaxUploadBytes:        100 * 1024 * 1024,
			ThumbnailMaxDimension: 192,
			ProbeTimeout:          30 * time.Second,
		},
		Pagination: PaginationConfig{PostPageSize: 50, PoolPageSize: 25},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %q", level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Media.MaxUploadBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Media.ThumbnailMaxDimension = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Pagination.PostPageSize = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandDataPaths_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = "/srv/pictor"
	cfg.Data.DatabasePath = ""
	cfg.Data.MediaPath = ""

	require.NoError(t, cfg.expandDataPaths())

	assert.Equal(t, "/srv/pictor", cfg.Data.BasePath)
	assert.Equal(t, filepath.Join("/srv/pictor", "pictor.db"), cfg.Data.DatabasePath)
	assert.Equal(t, filepath.Join("/srv/pictor", "media"), cfg.Data.MediaPath)
	assert.Equal(t, filepath.Join("/srv/pictor", "tokens"), cfg.Auth.TokensPath)
}

func TestExpandDataPaths_ExplicitOverrides(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = "/srv/pictor"
	cfg.Data.DatabasePath = "/var/db/catalog.db"
	cfg.Data.MediaPath = "/mnt/bulk/media"

	require.NoError(t, cfg.expandDataPaths())

	assert.Equal(t, "/var/db/catalog.db", cfg.Data.DatabasePath)
	assert.Equal(t, "/mnt/bulk/media", cfg.Data.MediaPath)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nPICTOR_TEST_KEY=hello\nPICTOR_TEST_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PICTOR_TEST_KEY")
		_ = os.Unsetenv("PICTOR_TEST_QUOTED")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("PICTOR_TEST_KEY"))
	assert.Equal(t, "world", os.Getenv("PICTOR_TEST_QUOTED"))
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("PICTOR_TEST_PRECEDENCE", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "PICTOR_TEST_PRECEDENCE", "fallback"))
	assert.Equal(t, "from-env", getConfigValue("", "PICTOR_TEST_PRECEDENCE", "fallback"))
	assert.Equal(t, "fallback", getConfigValue("", "PICTOR_TEST_MISSING", "fallback"))
}
