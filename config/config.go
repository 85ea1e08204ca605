package config

import (
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// AIParams holds the parameters for one AI profile.
type AIParams struct {
	Name string `json:"name"`
}

// Config holds all configurable server parameters. Game rules are fixed and not configurable.
type Config struct {
	WSPort int `json:"ws_port"`
	// RevealDurationMS is how long a peeked card stays face-up.
	RevealDurationMS int `json:"reveal_duration_ms"`
	MaxNameLength    int `json:"max_name_length"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"log_level"`

	// AIProfiles lists available AI opponents; one is chosen at random for each match.
	AIProfiles []AIParams `json:"ai_profiles"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:           8080,
		RevealDurationMS: 5000,
		MaxNameLength:    24,
		LogLevel:         "info",
		AIProfiles: []AIParams{
			{Name: "Mnemosyne"},
			{Name: "Calliope"},
			{Name: "Thalia"},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.RevealDurationMS, "REVEAL_DURATION_MS")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	if len(cfg.AIProfiles) > 0 {
		overrideString(&cfg.AIProfiles[0].Name, "AI_NAME")
	}

	return cfg
}

// RevealDuration returns RevealDurationMS as a time.Duration.
func (c *Config) RevealDuration() time.Duration {
	return time.Duration(c.RevealDurationMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
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

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
