package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the roster service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	SessionSecret    string
	SessionTTL       time.Duration
	TemplateSeedPath string
	Timezone         string
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values and reporting every missing or invalid entry in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:roster.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
		Timezone:   "Local",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROSTER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROSTER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROSTER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("ROSTER_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ROSTER_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROSTER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROSTER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if path := strings.TrimSpace(os.Getenv("ROSTER_TEMPLATE_SEED")); path != "" {
		cfg.TemplateSeedPath = path
	}

	if tz := strings.TrimSpace(os.Getenv("ROSTER_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ROSTER_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
