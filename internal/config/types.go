package config

import "time"

// Config is the full service configuration, read from config/evalia.yaml and
// then overridden from the environment.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Speech     SpeechConfig     `yaml:"speech"`
	Storage    StorageConfig    `yaml:"storage"`
	Notify     NotifyConfig     `yaml:"notify"`
	Interview  InterviewConfig  `yaml:"interview"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Log        LogConfig        `yaml:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RateLimit requests per RateWindow per client address.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`

	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
	CleanupInterval    time.Duration `yaml:"cleanup_interval"`
}

// LLMConfig lists text generation providers in failover order.
type LLMConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// SpeechConfig lists transcription providers in failover order. With no
// providers every transcript is empty.
type SpeechConfig struct {
	Providers []SpeechProviderConfig `yaml:"providers"`
}

type SpeechProviderConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"` // whisper-api, whisper-server
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	ServerURL string `yaml:"server_url"`
	Language  string `yaml:"language"`
}

type StorageConfig struct {
	// File is the results artifact path. Always written.
	File        string   `yaml:"file"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

// S3Config enables the object store mirror when Bucket is set.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type NotifyConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

type InterviewConfig struct {
	QuestionsPerRound int    `yaml:"questions_per_round"`
	TechDifficulty    string `yaml:"tech_difficulty"`
}

type ResilienceConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
	HalfOpenMax  int           `yaml:"half_open_max"`
	Attempts     int           `yaml:"attempts"`
	Backoff      time.Duration `yaml:"backoff"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       120 * time.Second,
			ShutdownTimeout:    30 * time.Second,
			RateLimit:          30,
			RateWindow:         time.Minute,
			SessionIdleTimeout: 24 * time.Hour,
			CleanupInterval:    time.Hour,
		},
		LLM: LLMConfig{
			Providers: []ProviderConfig{{Name: "groq", Kind: KindGroq, Model: DefaultGroqModel}},
		},
		Storage: StorageConfig{File: "interview_results.json"},
		Notify:  NotifyConfig{Exchange: "evalia.events"},
		Interview: InterviewConfig{
			QuestionsPerRound: 5,
			TechDifficulty:    "mid",
		},
		Resilience: ResilienceConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
			HalfOpenMax:  3,
			Attempts:     2,
			Backoff:      500 * time.Millisecond,
			CallTimeout:  60 * time.Second,
		},
		Log:       LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{Enabled: true, ServiceName: "evalia"},
	}
}
