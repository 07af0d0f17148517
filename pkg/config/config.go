// pkg/config/config.go
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything a run needs. It is built once in Load and
// passed explicitly; no other package reads the environment.
type Config struct {
	Env string

	// Okta
	OktaDomain   string
	OktaClientID string
	OktaKeyPEM   string // decoded PEM, not the base64 wire form
	OktaScope    string

	// Jira (upload is skipped when IssueKey is empty)
	JiraDomain    string
	JiraUserEmail string
	JiraAPIToken  string
	JiraIssueKey  string

	// Filesystem
	OutputDir   string
	ArchivePath string

	HTTPTimeout time.Duration
}

const defaultScope = "okta.groups.read okta.users.read okta.apps.read"

// Load reads configuration from the environment (after a best-effort
// .env load) and validates the Okta credential set. The devices scope is
// not added implicitly; set OKTA_SCOPE when running device actions.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Env:           env("EXPORT_ENV", "dev"),
		OktaDomain:    strings.TrimRight(env("OKTA_DOMAIN", ""), "/"),
		OktaClientID:  env("OKTA_CLIENT_ID", ""),
		OktaScope:     env("OKTA_SCOPE", defaultScope),
		JiraDomain:    env("JIRA_DOMAIN", ""),
		JiraUserEmail: env("JIRA_USER_EMAIL", ""),
		JiraAPIToken:  env("JIRA_API_TOKEN", ""),
		JiraIssueKey:  env("JIRA_ISSUE_KEY", ""),
		OutputDir:     env("OUTPUT_DIR", "output"),
		ArchivePath:   env("ARCHIVE_PATH", "okta_data.zip"),
		HTTPTimeout:   envDur("HTTP_TIMEOUT_SEC", 30) * time.Second,
	}

	var missing []string
	if cfg.OktaDomain == "" {
		missing = append(missing, "OKTA_DOMAIN")
	}
	if cfg.OktaClientID == "" {
		missing = append(missing, "OKTA_CLIENT_ID")
	}
	keyB64 := env("OKTA_KEY_PEM_BASE64", "")
	if keyB64 == "" {
		missing = append(missing, "OKTA_KEY_PEM_BASE64")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	pem, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return Config{}, fmt.Errorf("decode OKTA_KEY_PEM_BASE64: %w", err)
	}
	cfg.OktaKeyPEM = string(pem)
	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i)
		}
	}
	return time.Duration(def)
}
