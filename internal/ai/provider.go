package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-completion backend. Implementations are plain HTTP
// clients; callers own timeouts via ctx.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// GenerateJSON asks the provider for a strict-JSON reply and unmarshals it
// into out. Models frequently wrap JSON in markdown fences; those are
// stripped before parsing.
func GenerateJSON(ctx context.Context, p Provider, systemPrompt, prompt string, out any) error {
	msgs := make([]Message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt + "\n\nRespond ONLY with valid JSON, no other text."})

	raw, err := p.Chat(ctx, msgs)
	if err != nil {
		return err
	}

	cleaned := StripJSONFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse json reply: %w", err)
	}
	return nil
}

// StripJSONFences removes a surrounding ```json ... ``` block, if present.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
