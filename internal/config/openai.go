package config

import (
	"fmt"
	"strings"
)

// Text generation provider kinds.
const (
	KindOpenAI = "openai"
	KindGroq   = "groq"
	KindGemini = "gemini"
	KindAnyLLM = "anyllm"
	KindMock   = "mock"
)

// Speech provider kinds.
const (
	KindWhisperAPI    = "whisper-api"
	KindWhisperServer = "whisper-server"
)

const DefaultGroqModel = "llama-3.3-70b-versatile"

var anyLLMBackends = []string{"groq", "openai", "anthropic", "gemini", "ollama"}

// ProviderConfig describes one text generation backend.
type ProviderConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Backend selects the any-llm-go provider when Kind is anyllm.
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// DisplayName is Name, or Kind when unnamed.
func (p ProviderConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Kind == KindAnyLLM && p.Backend != "" {
		return p.Kind + "/" + p.Backend
	}
	return p.Kind
}

// KeyEnv names the environment variable that supplies the API key.
func (p ProviderConfig) KeyEnv() string {
	vendor := p.Kind
	if p.Kind == KindAnyLLM {
		vendor = p.Backend
	}
	switch strings.ToLower(vendor) {
	case "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func (p ProviderConfig) needsKey() bool {
	return p.KeyEnv() != ""
}

// validate checks one provider entry.
func (p ProviderConfig) validate(prefix string) []error {
	var errs []error
	switch p.Kind {
	case KindOpenAI, KindGroq, KindGemini, KindMock:
	case KindAnyLLM:
		if !contains(anyLLMBackends, p.Backend) {
			errs = append(errs, fmt.Errorf("%s.backend %q is invalid; valid values: %s", prefix, p.Backend, strings.Join(anyLLMBackends, ", ")))
		}
	default:
		return append(errs, fmt.Errorf("%s.kind %q is invalid; valid values: openai, groq, gemini, anyllm, mock", prefix, p.Kind))
	}

	if p.Model == "" && p.Kind != KindGemini && p.Kind != KindMock {
		errs = append(errs, fmt.Errorf("%s.model is required", prefix))
	}
	if p.needsKey() && p.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s.api_key is required (set %s)", prefix, p.KeyEnv()))
	}
	return errs
}

// Describe returns loggable provider details without the key.
func (p ProviderConfig) Describe() map[string]any {
	return map[string]any{
		"name":     p.DisplayName(),
		"kind":     p.Kind,
		"backend":  p.Backend,
		"model":    p.Model,
		"base_url": p.BaseURL,
	}
}

func (p SpeechProviderConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Kind
}

func (p SpeechProviderConfig) KeyEnv() string {
	if p.Kind != KindWhisperAPI {
		return ""
	}
	if strings.Contains(p.BaseURL, "groq.com") {
		return "GROQ_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (p SpeechProviderConfig) validate(prefix string) []error {
	var errs []error
	switch p.Kind {
	case KindWhisperAPI:
		if p.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s.api_key is required (set %s)", prefix, p.KeyEnv()))
		}
	case KindWhisperServer:
		if p.ServerURL == "" {
			errs = append(errs, fmt.Errorf("%s.server_url is required for whisper-server", prefix))
		}
	default:
		errs = append(errs, fmt.Errorf("%s.kind %q is invalid; valid values: whisper-api, whisper-server", prefix, p.Kind))
	}
	return errs
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
