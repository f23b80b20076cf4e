// Package config reads the process environment for the serve command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RouteFile       string
	Seed            int64
	StartHour       float64
	SecsPerMinute   float64
	TickInterval    time.Duration
	PublishInterval time.Duration
	StartCash       int
	PlayerID        string
	ArrivalRate     float64 // riders per stop per simulated minute

	DatabaseURL       string // empty keeps the wallet in memory
	DatabaseName      string // replaces the database named in DatabaseURL when set
	NATSURL           string // empty disables publishing
	NATSSubjectPrefix string
	LogNATSSubjects   bool
	MetricsAddr       string // empty disables the metrics server
	WSAddr            string // empty disables the websocket hub
	LogLevel          string
}

// Load reads the given .env files (".env" when none are given) into the
// environment without overriding variables already set, then parses the
// configuration. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		RouteFile:         os.Getenv("LOOPLINE_ROUTE"),
		PlayerID:          getenvDefault("LOOPLINE_PLAYER", "player"),
		DatabaseURL:       firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN")),
		DatabaseName:      os.Getenv("LOOPLINE_DB_NAME"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getenvDefault("NATS_SUBJECT_PREFIX", "loopline"),
		LogNATSSubjects:   parseBool(os.Getenv("LOG_NATS_SUBJECTS")),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		WSAddr:            os.Getenv("WS_ADDR"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Seed, err = int64Env("LOOPLINE_SEED", 1); err != nil {
		return nil, err
	}
	if cfg.StartHour, err = floatEnv("LOOPLINE_START_HOUR", 6); err != nil {
		return nil, err
	}
	if cfg.StartHour < 0 || cfg.StartHour >= 24 {
		return nil, fmt.Errorf("invalid LOOPLINE_START_HOUR: %v", cfg.StartHour)
	}
	if cfg.SecsPerMinute, err = floatEnv("LOOPLINE_SECONDS_PER_MINUTE", 1); err != nil {
		return nil, err
	}
	if cfg.SecsPerMinute <= 0 {
		return nil, fmt.Errorf("invalid LOOPLINE_SECONDS_PER_MINUTE: %v", cfg.SecsPerMinute)
	}
	if cfg.TickInterval, err = millisEnv("LOOPLINE_TICK_MS", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PublishInterval, err = millisEnv("PUBLISH_INTERVAL_MS", time.Second); err != nil {
		return nil, err
	}
	start, err := int64Env("LOOPLINE_START_CASH", 100)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, fmt.Errorf("invalid LOOPLINE_START_CASH: %d", start)
	}
	cfg.StartCash = int(start)
	if cfg.ArrivalRate, err = floatEnv("LOOPLINE_ARRIVALS_PER_MINUTE", 0.2); err != nil {
		return nil, err
	}
	if cfg.ArrivalRate < 0 {
		return nil, fmt.Errorf("invalid LOOPLINE_ARRIVALS_PER_MINUTE: %v", cfg.ArrivalRate)
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func int64Env(k string, def int64) (int64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return n, nil
}

func floatEnv(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func millisEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
