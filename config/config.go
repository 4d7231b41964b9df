// Package config resolves runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"bootstrap/failure"
)

// Environment keys.
const (
	EnvAPIKey            = "GPT_API_KEY"
	EnvAPIKeys           = "GPT_API_KEYS"
	EnvModel             = "GPT_MODEL"
	EnvBaseURL           = "GPT_BASE_URL"
	EnvRequestsPerMinute = "GPT_REQUESTS_PER_MINUTE"
	EnvOutputRoot        = "OUTPUT_ROOT"
	EnvListenAddr        = "LISTEN_ADDR"
	EnvRegion            = "REGION"
	EnvAvailabilityZones = "AVAILABILITY_ZONES"
)

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultOutputRoot = "output"
	DefaultListenAddr = ":8080"
)

// Config holds everything the commands need to build the agent stack.
type Config struct {
	APIKey            string
	ExtraAPIKeys      []string
	Model             string
	BaseURL           string
	RequestsPerMinute int
	OutputRoot        string
	ListenAddr        string
	Region            string
	AvailabilityZones string
}

// APIKeys returns the primary key followed by any extra keys.
func (c Config) APIKeys() []string {
	return append([]string{c.APIKey}, c.ExtraAPIKeys...)
}

// LoadEnv reads .env files into the process environment. A missing file is
// only worth a warning.
func LoadEnv(logger *log.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Warn(".env file not found or could not be loaded", "error", err)
	}
}

// Get returns the value of key or a ConfigurationError when it is unset or
// empty.
func Get(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", &failure.ConfigurationError{Key: key}
	}
	return value, nil
}

// GetOptional returns the value of key, or def when unset or empty.
func GetOptional(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// Load assembles a Config from the environment. The API key is required.
func Load() (Config, error) {
	apiKey, err := Get(EnvAPIKey)
	if err != nil {
		return Config{}, err
	}

	rpm, err := strconv.Atoi(GetOptional(EnvRequestsPerMinute, "0"))
	if err != nil || rpm < 0 {
		return Config{}, &failure.ConfigurationError{
			Key:    EnvRequestsPerMinute,
			Reason: "must be a non-negative integer",
		}
	}

	return Config{
		APIKey:            apiKey,
		ExtraAPIKeys:      splitList(os.Getenv(EnvAPIKeys)),
		Model:             GetOptional(EnvModel, DefaultModel),
		BaseURL:           os.Getenv(EnvBaseURL),
		RequestsPerMinute: rpm,
		OutputRoot:        GetOptional(EnvOutputRoot, DefaultOutputRoot),
		ListenAddr:        GetOptional(EnvListenAddr, DefaultListenAddr),
		Region:            os.Getenv(EnvRegion),
		AvailabilityZones: os.Getenv(EnvAvailabilityZones),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
