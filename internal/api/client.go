// Package api is the boundary to the Generative Text Service. Every backend
// implements Client with a single synchronous completion call.
package api

import (
	"context"
	"errors"
	"strings"
)

// Role of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion. Messages, when set, is sent after System
// and User is ignored. Zero Temperature or MaxTokens leave the provider
// default in place.
type Request struct {
	System      string
	User        string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// Turns returns the non-system messages of the request.
func (r Request) Turns() []Message {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	return []Message{{Role: RoleUser, Content: r.User}}
}

// Client is a chat-completion capable text generator.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("api: empty response")

// CleanJSONResponse strips markdown code fences that models wrap JSON in.
func CleanJSONResponse(response string) string {
	clean := strings.TrimSpace(response)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}
