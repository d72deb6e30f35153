package discovery

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"oasis/internal/adapters/config"
	"oasis/internal/domain/event"
	"oasis/internal/metrics"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// Compile-time check
var _ Searcher = (*OpenAISearcher)(nil)

const searchSystemPrompt = `You are a market research assistant for short-term rental revenue management.
Given a city and a date range, list the real-world events (religious, cultural, sporting, business, local)
likely to affect rental demand there. Respond with a single JSON object:
{"events":[{"title":"...","date_start":"YYYY-MM-DD","date_end":"YYYY-MM-DD","impact":"high|medium|low","confidence":0.0,"description":"...","source":"...","suggested_premium_pct":0}]}
Only include events overlapping the requested range. Respond with JSON only, no prose.`

// OpenAISearcher implements event discovery via the OpenAI chat completions
// API, rate-limited to stay within provider quotas.
type OpenAISearcher struct {
	client  openai.Client // NewClient returns Client (not *Client)
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewOpenAISearcher creates a new OpenAI-backed event searcher
func NewOpenAISearcher(cfg config.DiscoveryConfig) (*OpenAISearcher, error) {
	if cfg.OpenAIKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIKey),
	)

	return &OpenAISearcher{
		client:  client,
		model:   model,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 3),
		log:     logger.Get().With("component", "event_discovery", "model", model),
	}, nil
}

// SearchEvents asks the model for demand-affecting events in the range
func (s *OpenAISearcher) SearchEvents(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "discovery rate limiter")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := "City: " + req.Location +
		"\nDate range: " + req.StartDate + " to " + req.EndDate

	start := time.Now()
	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(searchSystemPrompt),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(s.model),
	})
	metrics.DiscoveryLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DiscoveryCalls.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(errors.ErrExternalService, "event discovery call failed: %v", err)
	}

	if len(response.Choices) == 0 {
		metrics.DiscoveryCalls.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrExternalService, "event discovery returned no choices")
	}

	result, err := parseSearchResponse(response.Choices[0].Message.Content)
	if err != nil {
		metrics.DiscoveryCalls.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DiscoveryCalls.WithLabelValues("success").Inc()

	s.log.Infow("Event discovery completed",
		"location", req.Location,
		"range", req.StartDate+".."+req.EndDate,
		"events", len(result.Events),
		"tokens_used", response.Usage.TotalTokens)

	return result, nil
}

// parseSearchResponse decodes the model's JSON answer, tolerating markdown
// code fences around the object.
func parseSearchResponse(content string) (*SearchResult, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var payload struct {
		Events []event.RawEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, errors.Wrapf(errors.ErrExternalService, "malformed discovery response: %v", err)
	}

	return &SearchResult{Success: true, Events: payload.Events}, nil
}
