package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Client generates chapter summaries through an OpenAI-compatible API.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	stats     *Stats
}

// Options configures the summarizer.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewClient creates a summarizer client. The API key is required.
func NewClient(opts Options, stats *Stats) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("summarizer API key is required")
	}
	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 400
	}

	return &Client{
		api:       openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
		stats:     stats,
	}, nil
}

const systemPrompt = `You summarize chapters of fiction for a reading app. Write 2-4 sentences capturing the main events and who was involved. No spoilers beyond the given text, no commentary, no quotes from the text.`

// SummarizeChapter returns a short recap of the chapter text.
func (c *Client) SummarizeChapter(ctx context.Context, title, text string) (string, error) {
	prompt := buildPrompt(title, text)

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
	})
	if c.stats != nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return "", wrapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from summarizer")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// maxPromptRunes bounds how much chapter text goes into one request.
const maxPromptRunes = 24000

func buildPrompt(title, text string) string {
	runes := []rune(text)
	if len(runes) > maxPromptRunes {
		runes = runes[:maxPromptRunes]
	}
	var sb strings.Builder
	if title != "" {
		sb.WriteString(fmt.Sprintf("Chapter: %q\n---\n", title))
	}
	sb.WriteString(string(runes))
	return sb.String()
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func wrapAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return &RetryableError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			}
		}
	}
	return fmt.Errorf("summarizer api: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
