package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultAddress        = ":8080"
	defaultAPIBasePath    = "/api"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultEnvironment    = "local"
	defaultLogLevel       = "info"
	defaultPagesDir       = "prodpage"
	defaultPagesExtension = ".php"
	defaultTargetLanguage = "fr"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Firebase    FirebaseConfig
	Pages       PagesConfig
	Translation TranslationConfig
	Logging     LoggingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Address      string
	APIBasePath  string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings used for staff authentication.
// An empty ProjectID selects the passthrough authenticator.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// PagesConfig locates the generated tour pages. When Bucket is set the pages
// are read from and written to Cloud Storage under Dir as object prefix.
type PagesConfig struct {
	Dir       string
	Bucket    string
	Extension string
}

// TranslationConfig controls the page translation endpoints.
type TranslationConfig struct {
	TargetLanguage string
	SanitizeInput  bool
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides, environment
// variables and explicit maps, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Address:      stringWithDefault(lookup, "ADMIN_HTTP_ADDR", defaultAddress),
			APIBasePath:  stringWithDefault(lookup, "ADMIN_API_BASE_PATH", defaultAPIBasePath),
			Environment:  strings.ToLower(stringWithDefault(lookup, "ADMIN_ENVIRONMENT", defaultEnvironment)),
			ReadTimeout:  durationWithDefault(lookup, "ADMIN_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "ADMIN_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "ADMIN_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "ADMIN_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "ADMIN_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Pages: PagesConfig{
			Dir:       stringWithDefault(lookup, "ADMIN_PAGES_DIR", defaultPagesDir),
			Bucket:    stringWithDefault(lookup, "ADMIN_PAGES_BUCKET", ""),
			Extension: normaliseExtension(stringWithDefault(lookup, "ADMIN_PAGES_EXTENSION", defaultPagesExtension)),
		},
		Translation: TranslationConfig{
			TargetLanguage: strings.ToLower(stringWithDefault(lookup, "ADMIN_TRANSLATION_TARGET_LANG", defaultTargetLanguage)),
			SanitizeInput:  boolWithDefault(lookup, "ADMIN_TRANSLATION_SANITIZE", true),
		},
		Logging: LoggingConfig{
			Level: stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.Address) == "" {
		missing = append(missing, "Server.Address")
	}
	if !strings.HasPrefix(cfg.Server.APIBasePath, "/") {
		missing = append(missing, "Server.APIBasePath")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if strings.TrimSpace(cfg.Pages.Dir) == "" && cfg.Pages.Bucket == "" {
		missing = append(missing, "Pages.Dir")
	}
	if cfg.Pages.Extension == "" {
		missing = append(missing, "Pages.Extension")
	}
	if strings.TrimSpace(cfg.Translation.TargetLanguage) == "" {
		missing = append(missing, "Translation.TargetLanguage")
	}
	if cfg.Server.Environment != defaultEnvironment && strings.TrimSpace(cfg.Firebase.ProjectID) == "" {
		missing = append(missing, "Firebase.ProjectID")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func normaliseExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
