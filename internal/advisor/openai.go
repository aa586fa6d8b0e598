package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel      = "gpt-4o-mini"
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
)

// OpenAIConfig configures the chat-completions backed Client.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// OpenAI is a Client backed by an OpenAI-compatible chat-completions
// endpoint. Calls are retried with capped exponential backoff and
// bounded by a hard per-call timeout so a room is never blocked
// indefinitely on the advisory service.
type OpenAI struct {
	client     openai.Client
	model      string
	maxRetries uint64
	timeout    time.Duration
	logger     *log.Logger
}

// NewOpenAI creates an OpenAI advisory client.
func NewOpenAI(cfg OpenAIConfig, logger *log.Logger) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &OpenAI{
		client:     openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      cfg.Model,
		maxRetries: uint64(cfg.MaxRetries),
		timeout:    cfg.Timeout,
		logger:     logger.WithPrefix("advisor"),
	}
}

// Advise implements Client.
func (o *OpenAI) Advise(ctx context.Context, system, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var reply string
	attempt := 0
	operation := func() error {
		attempt++
		completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(o.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(contextText),
			},
		})
		if err != nil {
			o.logger.Warn("Advisory call failed", "attempt", attempt, "error", err)
			return err
		}
		if len(completion.Choices) == 0 {
			o.logger.Warn("Advisory call returned no choices", "attempt", attempt)
			return fmt.Errorf("empty completion")
		}
		reply = completion.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, o.maxRetries), ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}

	o.logger.Debug("Advisory reply", "reply", reply)
	return reply, nil
}
