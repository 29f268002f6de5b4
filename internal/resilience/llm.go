package resilience

import (
	"context"
	"time"

	"evalia/internal/api"
)

// CallObserver receives one notification per provider call.
type CallObserver interface {
	ObserveCall(ctx context.Context, provider, kind string, d time.Duration, err error)
}

// Policy bounds each provider call.
type Policy struct {
	Breaker  BreakerConfig
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

// LLM implements api.Client over an ordered set of providers.
type LLM struct {
	group    *FallbackGroup[api.Client]
	policy   Policy
	observer CallObserver
}

var _ api.Client = (*LLM)(nil)

func NewLLM(primaryName string, primary api.Client, policy Policy, observer CallObserver) *LLM {
	return &LLM{
		group:    NewFallbackGroup(primaryName, primary, policy.Breaker),
		policy:   policy,
		observer: observer,
	}
}

// AddFallback registers another provider tried after the previous ones.
func (l *LLM) AddFallback(name string, c api.Client) { l.group.Add(name, c) }

// Providers lists provider names in failover order.
func (l *LLM) Providers() []string { return l.group.Names() }

// Available reports whether any provider circuit admits calls.
func (l *LLM) Available() bool { return l.group.Available() }

// Complete implements api.Client.
func (l *LLM) Complete(ctx context.Context, req api.Request) (string, error) {
	return Do(l.group, func(name string, c api.Client) (string, error) {
		return Retry(ctx, l.policy.Attempts, l.policy.Backoff, func(ctx context.Context) (string, error) {
			callCtx := ctx
			if l.policy.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, l.policy.Timeout)
				defer cancel()
			}
			start := time.Now()
			out, err := c.Complete(callCtx, req)
			if l.observer != nil {
				l.observer.ObserveCall(ctx, name, "llm", time.Since(start), err)
			}
			return out, err
		})
	})
}
