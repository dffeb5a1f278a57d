/*
settings.go - Flat key/value settings for the recurring tasks

PURPOSE:
  The schedulers reload these settings fresh on every cycle so operators can
  flip flags or change cadence without restarting the process. The document
  is a flat key/value file (dotenv format); process environment variables
  override nothing and fill gaps when the file omits a key.

KEYS:
  REMINDER_ENABLED            bool,   default true
  REMINDER_INTERVAL_MINUTES   int,    default 60, range [1, 1440]
  REMINDER_WINDOW_DAYS        int,    default 30, range [1, 365]
  BACKUP_ENABLED              bool,   default false
  BACKUP_INTERVAL_HOURS       int,    default 24, range [1, 168]

  Malformed or out-of-range values fall back to the defaults above and are
  logged at Warn.

SEE ALSO:
  - api/scheduler.go (module): Reloads on every cycle
*/
package maintenance

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the read-mostly configuration consumed by the schedulers.
type Settings struct {
	ReminderEnabled    bool
	ReminderInterval   time.Duration
	ReminderWindowDays int

	BackupEnabled  bool
	BackupInterval time.Duration
}

// DefaultSettings returns the documented fallback values.
func DefaultSettings() Settings {
	return Settings{
		ReminderEnabled:    true,
		ReminderInterval:   60 * time.Minute,
		ReminderWindowDays: 30,
		BackupEnabled:      false,
		BackupInterval:     24 * time.Hour,
	}
}

// SettingsLoader supplies current settings. Implementations must be cheap:
// schedulers call Load once per cycle.
type SettingsLoader interface {
	Load() Settings
}

// LoaderFunc adapts a function to SettingsLoader.
type LoaderFunc func() Settings

func (f LoaderFunc) Load() Settings { return f() }

// =============================================================================
// ENV FILE LOADER
// =============================================================================

// EnvFileLoader reads the settings document from a dotenv-format file,
// falling back to process environment variables for missing keys.
type EnvFileLoader struct {
	Path string
	log  logrus.FieldLogger
}

// NewEnvFileLoader creates a loader for the given settings file path.
func NewEnvFileLoader(path string, log logrus.FieldLogger) *EnvFileLoader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EnvFileLoader{Path: path, log: log.WithField("component", "settings")}
}

// Load re-reads the settings document. Never fails: a missing or unreadable
// file yields defaults overlaid with process environment values.
func (l *EnvFileLoader) Load() Settings {
	values := map[string]string{}
	if l.Path != "" {
		m, err := godotenv.Read(l.Path)
		if err != nil {
			l.log.WithError(err).Debugf("settings file %s unreadable, using environment and defaults", l.Path)
		} else {
			values = m
		}
	}

	get := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return os.Getenv(key)
	}

	def := DefaultSettings()
	return Settings{
		ReminderEnabled:    l.parseBool("REMINDER_ENABLED", get("REMINDER_ENABLED"), def.ReminderEnabled),
		ReminderInterval:   time.Duration(l.parseInt("REMINDER_INTERVAL_MINUTES", get("REMINDER_INTERVAL_MINUTES"), 60, 1, 1440)) * time.Minute,
		ReminderWindowDays: l.parseInt("REMINDER_WINDOW_DAYS", get("REMINDER_WINDOW_DAYS"), 30, 1, 365),
		BackupEnabled:      l.parseBool("BACKUP_ENABLED", get("BACKUP_ENABLED"), def.BackupEnabled),
		BackupInterval:     time.Duration(l.parseInt("BACKUP_INTERVAL_HOURS", get("BACKUP_INTERVAL_HOURS"), 24, 1, 168)) * time.Hour,
	}
}

func (l *EnvFileLoader) parseBool(key, raw string, def bool) bool {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	l.log.Warnf("malformed %s=%q, using default %v", key, raw, def)
	return def
}

func (l *EnvFileLoader) parseInt(key, raw string, def, min, max int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		l.log.Warnf("malformed %s=%q, using default %d", key, raw, def)
		return def
	}
	if n < min || n > max {
		l.log.Warnf("%s=%d outside [%d, %d], using default %d", key, n, min, max, def)
		return def
	}
	return n
}
