// Package config resolves runtime settings. Precedence, lowest first:
// built-in defaults, the YAML file, HUSTLE_* environment variables, and
// finally cobra flags applied by the caller to the returned struct.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFile            = "hustle.yaml"
	DefaultDBPath          = "hustle.db"
	DefaultLogFile         = "hustle.log"
	DefaultLogLevel        = "info"
	DefaultSchedulerBuffer = 64
)

type Config struct {
	DBPath               string `yaml:"db_path"`
	LogFile              string `yaml:"log_file"`
	LogLevel             string `yaml:"log_level"`
	Timezone             string `yaml:"timezone"`
	MissionSeed          int64  `yaml:"mission_seed"`
	SchedulerBuffer      int    `yaml:"scheduler_buffer"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
}

func Default() Config {
	return Config{
		DBPath:          DefaultDBPath,
		LogFile:         DefaultLogFile,
		LogLevel:        DefaultLogLevel,
		SchedulerBuffer: DefaultSchedulerBuffer,
	}
}

// partialConfig tells an absent key apart from one set to its zero value.
type partialConfig struct {
	DBPath               *string `yaml:"db_path"`
	LogFile              *string `yaml:"log_file"`
	LogLevel             *string `yaml:"log_level"`
	Timezone             *string `yaml:"timezone"`
	MissionSeed          *int64  `yaml:"mission_seed"`
	SchedulerBuffer      *int    `yaml:"scheduler_buffer"`
	DesktopNotifications *bool   `yaml:"desktop_notifications"`
}

// Load reads the YAML file at path over the defaults and then applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			var partial partialConfig
			if err := yaml.Unmarshal(data, &partial); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
			partial.apply(&cfg)
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (p partialConfig) apply(cfg *Config) {
	if p.DBPath != nil {
		cfg.DBPath = *p.DBPath
	}
	if p.LogFile != nil {
		cfg.LogFile = *p.LogFile
	}
	if p.LogLevel != nil {
		cfg.LogLevel = *p.LogLevel
	}
	if p.Timezone != nil {
		cfg.Timezone = *p.Timezone
	}
	if p.MissionSeed != nil {
		cfg.MissionSeed = *p.MissionSeed
	}
	if p.SchedulerBuffer != nil {
		cfg.SchedulerBuffer = *p.SchedulerBuffer
	}
	if p.DesktopNotifications != nil {
		cfg.DesktopNotifications = *p.DesktopNotifications
	}
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("HUSTLE_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("HUSTLE_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("HUSTLE_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("HUSTLE_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvInt("HUSTLE_MISSION_SEED"); ok {
		cfg.MissionSeed = int64(v)
	}
	if v, ok := getEnvInt("HUSTLE_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("HUSTLE_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db_path is required")
	}
	if c.SchedulerBuffer <= 0 {
		return errors.New("config: scheduler_buffer must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Rand returns the mission random source. A zero seed draws from the clock.
func (c Config) Rand() *rand.Rand {
	seed := c.MissionSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
