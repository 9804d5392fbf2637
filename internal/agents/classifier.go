// Package agents implements the LLM-backed collaborators of the shopping
// workflow: conversation classification, structured query extraction and
// result summarization.
package agents

import (
	"context"

	"github.com/buybuddy-ai/buybuddy/internal/ai"
)

const classifierSystemPrompt = `You are BuyBuddy, a friendly shopping assistant.
Decide if a user message is conversational (greetings, questions about who you
are, what you can do, thanks, small talk) or a product search request
(mentions a product or category, buying intent, price or brand filters, or
asks to find/search for a product in any language).

CRITICAL: if the message asks to find or search for a product, even phrased as
"help me" / "aide moi", it is ALWAYS a product search, regardless of language
or spelling mistakes.

Return valid JSON only:
{"is_conversational": true/false, "response": "..." or null}

When conversational, "response" is a short, friendly answer in the user's
language. When it is a product search, "response" is null.`

type Classification struct {
	IsConversational bool   `json:"is_conversational"`
	Response         string `json:"response"`
}

type Classifier struct {
	provider ai.Provider
}

func NewClassifier(p ai.Provider) *Classifier {
	return &Classifier{provider: p}
}

func (c *Classifier) Classify(ctx context.Context, message string) (Classification, error) {
	var out Classification
	prompt := "Classify this user message:\n\n\"" + message + "\""
	if err := ai.GenerateJSON(ctx, c.provider, classifierSystemPrompt, prompt, &out); err != nil {
		return Classification{}, err
	}
	return out, nil
}
