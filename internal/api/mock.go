package api

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNoScript is returned by MockClient when no rule matches a request.
var ErrNoScript = errors.New("api: mock has no scripted reply")

// MockClient answers requests from scripted rules. It is used by tests and
// by the offline "mock" provider.
type MockClient struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	err      error
	requests []Request
}

type mockRule struct {
	match string
	reply string
	err   error
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// On replies with reply to any request whose system or user text contains
// match. Rules are checked in registration order.
func (m *MockClient) On(match, reply string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, reply: reply})
	return m
}

// OnError fails requests containing match with err.
func (m *MockClient) OnError(match string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{match: match, err: err})
	return m
}

// Default sets the reply used when no rule matches.
func (m *MockClient) Default(reply string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = reply
	return m
}

// FailAll makes every request fail with err.
func (m *MockClient) FailAll(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Requests returns the requests seen so far.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}

	text := req.System
	for _, t := range req.Turns() {
		text += "\n" + t.Content
	}
	for _, r := range m.rules {
		if strings.Contains(text, r.match) {
			return r.reply, r.err
		}
	}
	if m.fallback != "" {
		return m.fallback, nil
	}
	return "", ErrNoScript
}
