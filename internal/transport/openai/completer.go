package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
	"github.com/querymorph/querymorph/internal/metrics"
)

const (
	expandSystemPrompt     = "You are a helpful assistant."
	synthesizeSystemPrompt = "You are an assistant that uses context to answer questions."
)

// Completer implements domain.Completer over the chat completions API.
type Completer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// CompleterConfig holds the chat model settings.
type CompleterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewCompleter creates a chat completion client.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// ExpandQuery asks the model to rephrase or expand the query.
func (c *Completer) ExpandQuery(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf("Please rephrase or expand the following query: %s", query)
	return c.complete(ctx, "expand", expandSystemPrompt, prompt)
}

// SynthesizeAnswer asks the model to answer the original query from the
// retrieved document contents.
func (c *Completer) SynthesizeAnswer(ctx context.Context, query string, contexts []string) (string, error) {
	prompt := fmt.Sprintf(
		"Here is the context: %s. Now, answer the question: %s",
		strings.Join(contexts, " "), query,
	)
	return c.complete(ctx, "synthesize", synthesizeSystemPrompt, prompt)
}

func (c *Completer) complete(ctx context.Context, op, system, user string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", parseAPIError(op, err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("empty %s response: %w", op, domain.ErrUpstream)
	}

	metrics.LLMRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(op).Observe(duration.Seconds())

	c.logger.Debug("chat completion",
		zap.String("op", op),
		zap.Duration("latency", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}
