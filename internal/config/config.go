package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultDir              = "restart-diagnostics"
	defaultNamespace        = "ml-platform"
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultHTTPPort         = "8080"
	defaultPollInterval     = 10 * time.Second
	defaultMonitorDuration  = 10 * time.Minute
	defaultSnapshotInterval = 60 * time.Second
	defaultQueryTimeout     = 10 * time.Second
)

type Config struct {
	Dir        string
	KubeConfig string
	KubeMaster string
	LogLevel   string
	LogFormat  string
	Namespace  string
	ChecksFile string

	HTTPPort    string
	HTTPEnabled bool

	PollInterval     time.Duration
	MonitorDuration  time.Duration
	SnapshotInterval time.Duration
	SnapshotSchedule string
	QueryTimeout     time.Duration

	StorageBoundThreshold time.Duration
	LateThreshold         time.Duration
}

// Load reads configuration from the environment, applying defaults and
// validating minimums. Invalid values are fatal before any artifact is
// touched.
func Load() (*Config, error) {
	cfg := &Config{
		Dir:              getEnvOrDefault(envKeyDir, defaultDir),
		KubeConfig:       getEnvWithFallback(envKeyKubeConfig, envKeyKubeConfigFallback),
		KubeMaster:       getEnvWithFallback(envKeyKubeMaster, envKeyKubeMasterFallback),
		LogLevel:         getEnvOrDefault(envKeyLogLevel, defaultLogLevel),
		LogFormat:        getEnvOrDefault(envKeyLogFormat, defaultLogFormat),
		Namespace:        getEnvOrDefault(envKeyNamespace, defaultNamespace),
		ChecksFile:       os.Getenv(envKeyChecksFile),
		HTTPPort:         getEnvOrDefault(envKeyHTTPPort, defaultHTTPPort),
		SnapshotSchedule: os.Getenv(envKeySnapshotSchedule),
	}

	httpEnabled, err := getEnvBool(envKeyHTTPEnabled, true)
	if err != nil {
		return nil, err
	}

	cfg.HTTPEnabled = httpEnabled

	durations := []struct {
		dst *time.Duration
		key string
		def time.Duration
		min time.Duration
	}{
		{&cfg.PollInterval, envKeyPollInterval, defaultPollInterval, envMinPollInterval},
		{&cfg.MonitorDuration, envKeyMonitorDuration, defaultMonitorDuration, envMinMonitorDuration},
		{&cfg.SnapshotInterval, envKeySnapshotInterval, defaultSnapshotInterval, envMinSnapshotInterval},
		{&cfg.QueryTimeout, envKeyQueryTimeout, defaultQueryTimeout, envMinQueryTimeout},
		{&cfg.StorageBoundThreshold, envKeyStorageBoundThreshold, defaultStorageBoundThreshold, 0},
		{&cfg.LateThreshold, envKeyLateThreshold, defaultLateThreshold, 0},
	}

	for _, d := range durations {
		v, err := getEnvDuration(d.key, d.def, d.min)
		if err != nil {
			return nil, err
		}

		*d.dst = v
	}

	if cfg.SnapshotInterval < cfg.PollInterval {
		return nil, fmt.Errorf(
			"%w: snapshot interval %s is finer than poll interval %s",
			ErrInvalidConfig, cfg.SnapshotInterval, cfg.PollInterval,
		)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvWithFallback(key, fallbackKey string) string {
	value := os.Getenv(key)
	if value == "" {
		return os.Getenv(fallbackKey)
	}

	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, key, err)
	}

	return v, nil
}

func getEnvDuration(key string, defaultValue, minValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	// Bare numbers are treated as seconds for operator convenience.
	if secs, err := strconv.Atoi(raw); err == nil {
		raw = strconv.Itoa(secs) + "s"
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, key, err)
	}

	if v < minValue {
		return 0, fmt.Errorf(
			"%w: %s=%s below minimum %s",
			ErrInvalidConfig, key, v, minValue,
		)
	}

	return v, nil
}
