package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"evalia/internal/api"
	"evalia/internal/config"
	"evalia/internal/health"
	"evalia/internal/metrics"
	"evalia/internal/notify"
	"evalia/internal/resilience"
	"evalia/internal/speech"
	"evalia/internal/storage"
)

func resiliencePolicy(c config.ResilienceConfig) resilience.Policy {
	return resilience.Policy{
		Breaker: resilience.BreakerConfig{
			MaxFailures:  c.MaxFailures,
			ResetTimeout: c.ResetTimeout,
			HalfOpenMax:  c.HalfOpenMax,
		},
		Attempts: c.Attempts,
		Backoff:  c.Backoff,
		Timeout:  c.CallTimeout,
	}
}

// buildLLM creates every configured provider and chains them in order.
func buildLLM(ctx context.Context, c config.LLMConfig, policy resilience.Policy, met *metrics.Metrics) (*resilience.LLM, error) {
	var llm *resilience.LLM
	for _, entry := range c.Providers {
		client, err := newLLMClient(ctx, entry, policy)
		if err != nil {
			return nil, fmt.Errorf("llm provider %q: %w", entry.DisplayName(), err)
		}
		slog.Info("llm provider configured", "provider", entry.Describe())
		if llm == nil {
			llm = resilience.NewLLM(entry.DisplayName(), client, policy, met)
			continue
		}
		llm.AddFallback(entry.DisplayName(), client)
	}
	if llm == nil {
		return nil, fmt.Errorf("no llm provider configured")
	}
	return llm, nil
}

func newLLMClient(ctx context.Context, entry config.ProviderConfig, policy resilience.Policy) (api.Client, error) {
	switch entry.Kind {
	case config.KindOpenAI, config.KindGroq:
		opts := []api.OpenAIOption{api.WithTimeout(policy.Timeout)}
		switch {
		case entry.BaseURL != "":
			opts = append(opts, api.WithBaseURL(entry.BaseURL))
		case entry.Kind == config.KindGroq:
			opts = append(opts, api.WithBaseURL(api.GroqBaseURL))
		}
		return api.NewOpenAIClient(entry.APIKey, entry.Model, opts...)
	case config.KindGemini:
		return api.NewGeminiClient(ctx, entry.APIKey, entry.Model)
	case config.KindAnyLLM:
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return api.NewAnyLLMClient(entry.Backend, entry.Model, opts...)
	case config.KindMock:
		return api.NewMockClient().Default("Mock response"), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", entry.Kind)
	}
}

// buildTranscriber returns nil when no speech provider is configured.
func buildTranscriber(c config.SpeechConfig, policy resilience.Policy, met *metrics.Metrics) (speech.Transcriber, error) {
	var stt *resilience.STT
	for _, entry := range c.Providers {
		t, err := newTranscriber(entry)
		if err != nil {
			return nil, fmt.Errorf("speech provider %q: %w", entry.DisplayName(), err)
		}
		slog.Info("speech provider configured", "name", entry.DisplayName(), "kind", entry.Kind)
		if stt == nil {
			stt = resilience.NewSTT(entry.DisplayName(), t, policy, met)
			continue
		}
		stt.AddFallback(entry.DisplayName(), t)
	}
	if stt == nil {
		return nil, nil
	}
	return stt, nil
}

func newTranscriber(entry config.SpeechProviderConfig) (speech.Transcriber, error) {
	switch entry.Kind {
	case config.KindWhisperAPI:
		return speech.NewWhisperAPI(entry.APIKey, entry.BaseURL, entry.Model, entry.Language)
	case config.KindWhisperServer:
		var opts []speech.ServerOption
		if entry.Language != "" {
			opts = append(opts, speech.WithLanguage(entry.Language))
		}
		return speech.NewWhisperServer(entry.ServerURL, opts...)
	default:
		return nil, fmt.Errorf("unknown kind %q", entry.Kind)
	}
}

// buildStore always writes the local file and mirrors saves to Postgres and
// S3 when they are configured.
func buildStore(ctx context.Context, c config.StorageConfig) (storage.ResultStore, []health.Checker, func(), error) {
	file := storage.NewFileStore(c.File)
	var (
		mirrors  []storage.ResultStore
		checkers []health.Checker
		closers  []func()
	)
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if c.PostgresDSN != "" {
		pg, err := storage.Connect(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, closeAll, fmt.Errorf("postgres: %w", err)
		}
		mirrors = append(mirrors, pg)
		checkers = append(checkers, health.Checker{Name: "postgres", Check: pg.Ping})
		closers = append(closers, pg.Close)
		slog.Info("results mirrored to postgres")
	}

	if c.S3.Bucket != "" {
		client, err := newS3Client(ctx, c.S3)
		if err != nil {
			closeAll()
			return nil, nil, func() {}, fmt.Errorf("s3: %w", err)
		}
		s3Store := storage.NewS3Store(client, c.S3.Bucket, c.S3.Key)
		mirrors = append(mirrors, s3Store)
		checkers = append(checkers, health.Checker{Name: "s3", Check: s3Store.Ping})
		slog.Info("results mirrored to s3", "bucket", c.S3.Bucket)
	}

	if len(mirrors) == 0 {
		return file, checkers, closeAll, nil
	}
	return storage.NewMirrorStore(file, mirrors...), checkers, closeAll, nil
}

func newS3Client(ctx context.Context, c config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// buildPublisher dials AMQP when configured and otherwise discards events.
func buildPublisher(c config.NotifyConfig) (notify.Publisher, *health.Checker, func(), error) {
	if c.AMQPURL == "" {
		return notify.Noop{}, nil, func() {}, nil
	}
	pub, err := notify.DialAMQP(c.AMQPURL, c.Exchange)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("amqp: %w", err)
	}
	slog.Info("publishing interview events", "exchange", c.Exchange)
	closeFn := func() {
		if err := pub.Close(); err != nil {
			slog.Warn("amqp close", "err", err)
		}
	}
	return pub, &health.Checker{Name: "amqp", Check: pub.Ping}, closeFn, nil
}
