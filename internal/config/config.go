package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/identity"
	"github.com/kozaktomas/burst-composer/internal/landmarks"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	FaceService FaceServiceConfig
	Cache       CacheConfig
	Analysis    AnalysisConfig
	Web         WebConfig
	Thresholds  Thresholds
}

type FaceServiceConfig struct {
	URL string // defaults to http://localhost:8000
}

type CacheConfig struct {
	TTL       time.Duration // zero disables expiry
	StorePath string        // sqlite file for persisted analyses; empty keeps the cache in memory
}

type AnalysisConfig struct {
	Concurrency int // parallel photo scoring workers (default 4)
}

type WebConfig struct {
	Host string
	Port int
}

// Thresholds bundles every tunable cutoff of the pipeline. The embedded
// thresholds.yaml carries the calibrated values.
type Thresholds struct {
	Eyes       landmarks.EyeThresholds     `yaml:"eyes"`
	Expression landmarks.ExpressionWeights `yaml:"expression"`
	Scoring    scoring.Weights             `yaml:"scoring"`
	Identity   identity.Thresholds         `yaml:"identity"`
	Analysis   analysis.Thresholds         `yaml:"analysis"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a time.Duration ("15m", "2h").
// Returns the default value if the env var is unset, empty, or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func Load() *Config {
	var thresholds Thresholds
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		FaceService: FaceServiceConfig{
			URL: os.Getenv("FACE_SERVICE_URL"),
		},
		Cache: CacheConfig{
			TTL:       envDuration("CACHE_TTL", 0),
			StorePath: os.Getenv("CACHE_STORE_PATH"),
		},
		Analysis: AnalysisConfig{
			Concurrency: envInt("ANALYSIS_CONCURRENCY", 4),
		},
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8080),
		},
		Thresholds: thresholds,
	}
}
