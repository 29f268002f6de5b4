package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides file values with environment variables. Provider API
// keys are only filled where the file left them empty.
func ApplyEnv(cfg *Config) {
	cfg.Server.Port = getEnvAsInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.RateLimit = getEnvAsInt("RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Server.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Log.Format))
	cfg.Telemetry.Enabled = getEnvAsBool("TELEMETRY_ENABLED", cfg.Telemetry.Enabled)

	if kind := os.Getenv("LLM_PROVIDER"); kind != "" {
		if len(cfg.LLM.Providers) == 0 {
			cfg.LLM.Providers = []ProviderConfig{{}}
		}
		p := &cfg.LLM.Providers[0]
		if p.Kind != kind {
			p.Kind = kind
			p.Name = ""
			p.Model = ""
			p.APIKey = ""
			if kind == KindGroq {
				p.Model = DefaultGroqModel
			}
		}
	}
	if model := os.Getenv("LLM_MODEL"); model != "" && len(cfg.LLM.Providers) > 0 {
		cfg.LLM.Providers[0].Model = model
	}
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		if p.APIKey == "" && p.KeyEnv() != "" {
			p.APIKey = os.Getenv(p.KeyEnv())
		}
	}

	for i := range cfg.Speech.Providers {
		p := &cfg.Speech.Providers[i]
		if p.APIKey == "" && p.KeyEnv() != "" {
			p.APIKey = os.Getenv(p.KeyEnv())
		}
		if p.Kind == KindWhisperServer {
			p.ServerURL = getEnv("WHISPER_SERVER_URL", p.ServerURL)
		}
	}

	cfg.Storage.File = getEnv("RESULTS_FILE", cfg.Storage.File)
	cfg.Storage.PostgresDSN = getEnv("DATABASE_URL", cfg.Storage.PostgresDSN)
	cfg.Storage.S3.Bucket = getEnv("S3_BUCKET", cfg.Storage.S3.Bucket)
	cfg.Storage.S3.Region = getEnv("AWS_REGION", cfg.Storage.S3.Region)
	cfg.Storage.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.S3.Endpoint)

	cfg.Notify.AMQPURL = getEnv("AMQP_URL", cfg.Notify.AMQPURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
