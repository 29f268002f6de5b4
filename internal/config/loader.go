package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its configuration file.
const DefaultPath = "config/evalia.yaml"

// Load reads path (falling back to Default when it does not exist), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("config file not found, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML on top of Default and validates it. The
// environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate returns every problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [1, 65535]", cfg.Server.Port))
	}
	if cfg.Server.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be positive"))
	}
	if cfg.Server.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_window must be positive"))
	}
	if cfg.Server.SessionIdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.session_idle_timeout must be positive"))
	}

	if len(cfg.LLM.Providers) == 0 {
		errs = append(errs, fmt.Errorf("llm.providers must list at least one provider"))
	}
	seen := make(map[string]int, len(cfg.LLM.Providers))
	for i, p := range cfg.LLM.Providers {
		prefix := fmt.Sprintf("llm.providers[%d]", i)
		errs = append(errs, p.validate(prefix)...)
		name := p.DisplayName()
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of llm.providers[%d]", prefix, name, prev))
		}
		seen[name] = i
	}

	for i, p := range cfg.Speech.Providers {
		errs = append(errs, p.validate(fmt.Sprintf("speech.providers[%d]", i))...)
	}
	if len(cfg.Speech.Providers) == 0 {
		slog.Warn("speech.providers is empty; every recorded answer will be stored with an empty transcript")
	}

	if cfg.Storage.File == "" {
		errs = append(errs, fmt.Errorf("storage.file is required"))
	}

	if cfg.Interview.QuestionsPerRound <= 0 {
		errs = append(errs, fmt.Errorf("interview.questions_per_round must be positive"))
	}

	if cfg.Resilience.Attempts < 1 {
		errs = append(errs, fmt.Errorf("resilience.attempts must be at least 1"))
	}
	if cfg.Resilience.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("resilience.max_failures must be at least 1"))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
