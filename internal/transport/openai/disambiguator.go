// Package openai implements the optional LLM-assisted disambiguation
// transport (spec §4.6a) against the OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/libris-match/engine/internal/domain"
)

// Disambiguator picks the best match from a winning cluster via a chat
// completion. It implements domain.Disambiguator.
type Disambiguator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the disambiguation provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// New creates an OpenAI-compatible Disambiguator.
func New(cfg Config) *Disambiguator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Disambiguator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// pickResponse is the JSON shape the model is instructed to answer with.
type pickResponse struct {
	ReferenceID string `json:"reference_id"`
}

// Pick implements domain.Disambiguator. A reference id absent from the
// candidate set, or a response that fails to parse, is treated as a
// declined pick (empty ReferenceID, nil error) — the caller decides what a
// fail-open outcome looks like.
func (d *Disambiguator) Pick(
	ctx context.Context, query domain.DisambiguationQuery, candidates []domain.DisambiguationCandidate,
) (domain.DisambiguationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, candidates)},
		},
		Temperature: 0,
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.DisambiguationResult{}, fmt.Errorf("disambiguation chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.DisambiguationResult{}, fmt.Errorf("disambiguation chat completion: empty choices")
	}

	result := domain.DisambiguationResult{
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}

	var parsed pickResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		if d.logger != nil {
			d.logger.Warn("disambiguation response did not parse as JSON, declining", zap.String("content", content))
		}
		return result, nil
	}

	for _, c := range candidates {
		if c.ReferenceID == parsed.ReferenceID {
			result.ReferenceID = parsed.ReferenceID
			return result, nil
		}
	}
	return result, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (d *Disambiguator) HealthCheck(ctx context.Context) error {
	if _, err := d.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

const systemPrompt = `You are choosing which catalog reference best matches a query ` +
	`bibliographic record. Respond with a JSON object {"reference_id": "<id>"} naming ` +
	`exactly one of the given candidate ids, or {"reference_id": ""} if none is clearly best.`

func buildPrompt(q domain.DisambiguationQuery, candidates []domain.DisambiguationCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: title=%q author=%q place=%q year=%q\n\nCandidates:\n", q.Title, q.Author, q.Place, q.Year)
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id=%q title=%q author=%q place=%q year=%q\n", c.ReferenceID, c.Title, c.Author, c.Place, c.Year)
	}
	return b.String()
}
