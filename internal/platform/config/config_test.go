package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Server.APIBasePath != "/api" {
		t.Errorf("expected default api base path /api, got %s", cfg.Server.APIBasePath)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Pages.Dir != "prodpage" {
		t.Errorf("expected default pages dir prodpage, got %s", cfg.Pages.Dir)
	}
	if cfg.Pages.Extension != ".php" {
		t.Errorf("expected default extension .php, got %s", cfg.Pages.Extension)
	}
	if cfg.Translation.TargetLanguage != "fr" {
		t.Errorf("expected default target language fr, got %s", cfg.Translation.TargetLanguage)
	}
	if !cfg.Translation.SanitizeInput {
		t.Errorf("expected input sanitising to default to true")
	}
	if cfg.Firebase.ProjectID != "" {
		t.Errorf("expected no firebase project by default, got %s", cfg.Firebase.ProjectID)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"ADMIN_HTTP_ADDR":               ":9090",
		"ADMIN_PAGES_DIR":               "/srv/pages",
		"ADMIN_PAGES_EXTENSION":         "HTML",
		"ADMIN_TRANSLATION_TARGET_LANG": "DE",
		"ADMIN_TRANSLATION_SANITIZE":    "off",
		"ADMIN_SERVER_WRITE_TIMEOUT":    "45s",
		"ADMIN_SERVER_READ_TIMEOUT":     "not-a-duration",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("unexpected address %s", cfg.Server.Address)
	}
	if cfg.Pages.Dir != "/srv/pages" {
		t.Errorf("unexpected pages dir %s", cfg.Pages.Dir)
	}
	if cfg.Pages.Extension != ".html" {
		t.Errorf("expected normalised extension .html, got %s", cfg.Pages.Extension)
	}
	if cfg.Translation.TargetLanguage != "de" {
		t.Errorf("expected lowercase target language, got %s", cfg.Translation.TargetLanguage)
	}
	if cfg.Translation.SanitizeInput {
		t.Errorf("expected sanitising disabled")
	}
	if cfg.Server.WriteTimeout != 45*time.Second {
		t.Errorf("unexpected write timeout %s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Errorf("invalid duration should fall back to default, got %s", cfg.Server.ReadTimeout)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport ADMIN_PAGES_DIR=\"./pages\"\nADMIN_FIREBASE_PROJECT_ID=trips-dev\nbroken-line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{
		"ADMIN_FIREBASE_PROJECT_ID": "trips-prod",
	}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pages.Dir != "./pages" {
		t.Errorf("expected dotenv pages dir, got %s", cfg.Pages.Dir)
	}
	if cfg.Firebase.ProjectID != "trips-prod" {
		t.Errorf("explicit env map should win over dotenv, got %s", cfg.Firebase.ProjectID)
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"ADMIN_API_BASE_PATH": "api",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := vErr.Fields()
	if len(fields) != 1 || fields[0] != "Server.APIBasePath" {
		t.Fatalf("unexpected invalid fields %v", fields)
	}
}

func TestLoadRequiresFirebaseOutsideLocal(t *testing.T) {
	_, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"ADMIN_ENVIRONMENT": "Production",
	}))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if fields := vErr.Fields(); len(fields) != 1 || fields[0] != "Firebase.ProjectID" {
		t.Fatalf("unexpected invalid fields %v", fields)
	}

	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"ADMIN_ENVIRONMENT":         "production",
		"ADMIN_FIREBASE_PROJECT_ID": "trips-prod",
	}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Environment != "production" {
		t.Fatalf("unexpected environment %s", cfg.Server.Environment)
	}
}
