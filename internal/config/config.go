// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Data       DataConfig
	Media      MediaConfig
	Server     ServerConfig
	Auth       AuthConfig
	Pagination PaginationConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds catalog and media storage paths.
type DataConfig struct {
	// BasePath is the root data directory; the database and media live under it.
	BasePath string
	// DatabasePath is the SQLite file (default: {data}/pictor.db).
	DatabasePath string
	// MediaPath is the directory for originals and thumbnails (default: {data}/media).
	MediaPath string
}

// MediaConfig holds upload and processing configuration.
type MediaConfig struct {
	// MaxUploadBytes is the upload size cap (default: 100 MiB).
	MaxUploadBytes int64
	// ThumbnailMaxDimension bounds the longer thumbnail edge (default: 192).
	ThumbnailMaxDimension int
	// FFmpegPath overrides auto-detection of ffmpeg (default: "ffmpeg" on PATH).
	FFmpegPath string
	// FFprobePath overrides auto-detection of ffprobe (default: "ffprobe" on PATH).
	FFprobePath string
	// ProbeTimeout bounds a single ffmpeg/ffprobe invocation (default: 30s).
	ProbeTimeout time.Duration
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s, uploads are slow)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: any)
	UploadPerMin   int           // Upload rate limit per IP (default: 10)
	UploadBurst    int           // Upload burst per IP (default: 5)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokensPath is the bearer token table file (default: {data}/tokens).
	// Empty file or missing file means every caller is anonymous.
	TokensPath string
}

// PaginationConfig holds listing page sizes.
type PaginationConfig struct {
	PostPageSize int // Posts per search page (default: 50)
	PoolPageSize int // Pools per listing page (default: 25)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for the catalog and media")
	databasePath := flag.String("database-path", "", "SQLite database file")
	mediaPath := flag.String("media-path", "", "Directory for stored media")
	tokensPath := flag.String("tokens-path", "", "Bearer token table file")

	// Media flags
	maxUpload := flag.String("max-upload-bytes", "", "Upload size cap in bytes (default: 104857600)")
	thumbDim := flag.String("thumbnail-max-dimension", "", "Longer thumbnail edge in pixels (default: 192)")
	ffmpegPath := flag.String("ffmpeg-path", "", "Path to ffmpeg binary (default: PATH lookup)")
	ffprobePath := flag.String("ffprobe-path", "", "Path to ffprobe binary (default: PATH lookup)")
	probeTimeout := flag.String("probe-timeout", "", "Timeout per ffmpeg/ffprobe run (default: 30s)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	uploadPerMin := flag.String("upload-per-minute", "", "Uploads allowed per IP per minute (default: 10)")
	uploadBurst := flag.String("upload-burst", "", "Upload burst per IP (default: 5)")

	// Pagination flags
	postPageSize := flag.String("post-page-size", "", "Posts per search page (default: 50)")
	poolPageSize := flag.String("pool-page-size", "", "Pools per listing page (default: 25)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath:     getConfigValue(*dataPath, "DATA_PATH", ""),
			DatabasePath: getConfigValue(*databasePath, "DATABASE_PATH", ""),
			MediaPath:    getConfigValue(*mediaPath, "MEDIA_PATH", ""),
		},
		Media: MediaConfig{
			MaxUploadBytes:        int64(getIntConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", 100*1024*1024)),
			ThumbnailMaxDimension: getIntConfigValue(*thumbDim, "THUMBNAIL_MAX_DIMENSION", 192),
			FFmpegPath:            getConfigValue(*ffmpegPath, "FFMPEG_PATH", "ffmpeg"),
			FFprobePath:           getConfigValue(*ffprobePath, "FFPROBE_PATH", "ffprobe"),
		},
		Server: ServerConfig{
			Port:         getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			UploadPerMin: getIntConfigValue(*uploadPerMin, "UPLOAD_PER_MINUTE", 10),
			UploadBurst:  getIntConfigValue(*uploadBurst, "UPLOAD_BURST", 5),
		},
		Auth: AuthConfig{
			TokensPath: getConfigValue(*tokensPath, "AUTH_TOKENS_PATH", ""),
		},
		Pagination: PaginationConfig{
			PostPageSize: getIntConfigValue(*postPageSize, "POST_PAGE_SIZE", 50),
			PoolPageSize: getIntConfigValue(*poolPageSize, "POOL_PAGE_SIZE", 25),
		},
	}

	if origins := getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", ""); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
			}
		}
	}

	// Parse durations.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Media.ProbeTimeout, err = parseDurationValue(*probeTimeout, "PROBE_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid probe timeout: %w", err)
	}

	// Expand and derive data paths.
	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid max upload size: %d", c.Media.MaxUploadBytes)
	}

	if c.Media.ThumbnailMaxDimension <= 0 {
		return fmt.Errorf("invalid thumbnail dimension: %d", c.Media.ThumbnailMaxDimension)
	}

	if c.Pagination.PostPageSize <= 0 || c.Pagination.PoolPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPaths expands the base path and derives the database, media, and
// tokens paths from it when they were not set explicitly.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultBase := filepath.Join(homeDir, "Pictor")

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, defaultBase); err != nil {
		return err
	}
	if c.Data.DatabasePath, err = expandPath(c.Data.DatabasePath, filepath.Join(c.Data.BasePath, "pictor.db")); err != nil {
		return err
	}
	if c.Data.MediaPath, err = expandPath(c.Data.MediaPath, filepath.Join(c.Data.BasePath, "media")); err != nil {
		return err
	}
	if c.Auth.TokensPath, err = expandPath(c.Auth.TokensPath, filepath.Join(c.Data.BasePath, "tokens")); err != nil {
		return err
	}
	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
