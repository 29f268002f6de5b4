// Package chatbot is the career assistant reachable from the dashboard. Its
// conversation is kept apart from the interview results.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"evalia/internal/api"
	"evalia/internal/observe"
	"evalia/internal/prompts"
)

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("chatbot: empty message")

var offTopicMarkers = []string{"sorry", "can't help", "don't know", "not qualified", "not my area"}

var listMarker = regexp.MustCompile(`\d+\.\s`)

// Conversation is safe for concurrent use.
type Conversation struct {
	mu       sync.Mutex
	client   api.Client
	messages []api.Message
}

func New(client api.Client) *Conversation {
	return &Conversation{
		client:   client,
		messages: []api.Message{{Role: api.RoleSystem, Content: prompts.AssistantSystem}},
	}
}

// Send adds the user's message, asks the model with the whole history and
// returns the cleaned reply. The reply is recorded even when the call fails.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, api.Message{Role: api.RoleUser, Content: text})

	reply, err := c.client.Complete(ctx, api.Request{
		System:      c.messages[0].Content,
		Messages:    append([]api.Message(nil), c.messages[1:]...),
		Temperature: 0.3,
	})
	if err != nil {
		observe.Logger(ctx).Warn("assistant call failed", "err", err)
		reply = fmt.Sprintf("Error processing your request. Please try again later. (%v)", err)
	} else {
		reply = CleanReply(reply)
		if IsOffTopic(reply) {
			reply = prompts.AssistantRefusal
		}
	}

	c.messages = append(c.messages, api.Message{Role: api.RoleAssistant, Content: reply})
	return reply, nil
}

// History returns the user and assistant turns in order.
func (c *Conversation) History() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.messages[1:]...)
}

// CleanReply drops markdown emphasis, bullets and list numbering.
func CleanReply(reply string) string {
	reply = strings.ReplaceAll(reply, "*", "")
	reply = strings.ReplaceAll(reply, "•", "")
	reply = listMarker.ReplaceAllString(reply, "")
	return strings.TrimSpace(reply)
}

func IsOffTopic(reply string) bool {
	lower := strings.ToLower(reply)
	for _, m := range offTopicMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
