// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds AWS, Athena, storage and server settings.
type Config struct {
	// AWS. Static credentials are optional; without them the default
	// credential chain (env, shared profile, instance role) is used.
	Region      string
	KeyID       *string
	Secret      *string
	AthenaURL   string // ATHENA_ENDPOINT override, e.g. a VPC endpoint
	S3Endpoint  string // S3_ENDPOINT override for S3-compatible stores
	S3PathStyle bool

	// Athena request defaults.
	Database       string
	Catalog        string
	WorkGroup      string
	OutputLocation string // s3:// prefix for results when the workgroup does not set one

	// Optional extra result backends.
	GCSKeyFile       string
	AzureAccountName string
	AzureAccountKey  string

	ListenAddr         string   // HTTP listen address (default ":8080")
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])
	LogLevel           string   // log level: debug, info, warn, error (default "info")
	Env                string   // environment: "development" (default) or "production"

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasStaticCredentials returns true if both KEY_ID and SECRET are set.
func (c *Config) HasStaticCredentials() bool {
	return c.KeyID != nil && c.Secret != nil
}

// HasGCS returns true if a GCS service account key file is configured.
func (c *Config) HasGCS() bool {
	return c.GCSKeyFile != ""
}

// HasAzure returns true if Azure shared-key credentials are configured.
func (c *Config) HasAzure() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Region:           os.Getenv("AWS_REGION"),
		AthenaURL:        os.Getenv("ATHENA_ENDPOINT"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PathStyle:      parseBoolEnvDefault("S3_PATH_STYLE", false),
		Database:         os.Getenv("ATHENA_DATABASE"),
		Catalog:          os.Getenv("ATHENA_CATALOG"),
		WorkGroup:        os.Getenv("ATHENA_WORKGROUP"),
		OutputLocation:   os.Getenv("ATHENA_OUTPUT_LOCATION"),
		GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
	}

	if cfg.Region == "" {
		cfg.Region = os.Getenv("REGION")
	}

	// Static credentials are optional; only set if present.
	if v := os.Getenv("KEY_ID"); v != "" {
		cfg.KeyID = &v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.Secret = &v
	}
	if (cfg.KeyID == nil) != (cfg.Secret == nil) {
		return nil, fmt.Errorf("both KEY_ID and SECRET must be set together")
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	if cfg.OutputLocation != "" && !strings.HasPrefix(cfg.OutputLocation, "s3://") {
		return nil, fmt.Errorf("ATHENA_OUTPUT_LOCATION must be an s3:// URI, got %q", cfg.OutputLocation)
	}
	if (cfg.AzureAccountName == "") != (cfg.AzureAccountKey == "") {
		cfg.Warnings = append(cfg.Warnings, "Azure result backend disabled: set both AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}

	// Defaults
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
		cfg.Warnings = append(cfg.Warnings, "AWS_REGION not set, using us-east-1")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// env vars take precedence
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
