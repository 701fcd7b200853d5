package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/infra/llm/chatgpt"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

const (
	kindSuggestion = "suggestion"
	kindInsights   = "insights"

	outcomeSuccess = "success"
	outcomeQuota   = "quota"
	outcomeError   = "error"
	outcomeEmpty   = "empty"
)

// ChatClient is the subset of the chat completions client the adapter needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Cache stores successful AI replies keyed by their inputs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string, ttl time.Duration) error
}

// Adapter implements prediction.Augmenter on top of a chat completions API.
type Adapter struct {
	cfg      Config
	client   ChatClient
	cache    Cache
	counter  TokenCounter
	logger   *slog.Logger
	requests *metrics.CounterVec
	cacheHit *metrics.CounterVec
	tokens   *metrics.CounterVec
}

// NewAdapter builds the adapter. A nil client makes it permanently unavailable;
// cache and counter are optional.
func NewAdapter(cfg Config, client ChatClient, cache Cache, counter TokenCounter, registry *metrics.Registry, logger *slog.Logger) *Adapter {
	if counter == nil {
		counter = ApproxCounter{}
	}
	a := &Adapter{
		cfg:     cfg,
		client:  client,
		cache:   cache,
		counter: counter,
		logger:  logger.With("component", "advisor.adapter"),
	}
	if registry != nil {
		a.requests = registry.Counter("ai_requests_total", "AI augmentation calls by kind and outcome.", "kind", "outcome")
		a.cacheHit = registry.Counter("ai_cache_total", "AI result cache lookups by result.", "result")
		a.tokens = registry.Counter("ai_tokens_total", "AI tokens consumed by type.", "type")
	}
	return a
}

// Available reports whether an AI client was configured.
func (a *Adapter) Available() bool {
	return a != nil && a.client != nil
}

// Suggest asks the model for a short recommendation.
func (a *Adapter) Suggest(ctx context.Context, est prediction.Estimation, input prediction.NormalizedInput) (string, bool) {
	if !a.Available() {
		return "", false
	}
	key := cacheKey(kindSuggestion, est, input, true)
	if cached, ok := a.lookup(ctx, key); ok {
		return cached, true
	}

	reply, ok := a.complete(ctx, kindSuggestion, buildSuggestionPrompt(est, input))
	if !ok {
		return "", false
	}
	a.store(ctx, key, reply)
	return reply, true
}

// Insights asks the model for a few standalone tips.
func (a *Adapter) Insights(ctx context.Context, est prediction.Estimation, input prediction.NormalizedInput) ([]string, bool) {
	if !a.Available() {
		return nil, false
	}
	key := cacheKey(kindInsights, est, input, false)
	if cached, ok := a.lookup(ctx, key); ok {
		var tips []string
		if err := json.Unmarshal([]byte(cached), &tips); err == nil && len(tips) > 0 {
			return tips, true
		}
	}

	reply, ok := a.complete(ctx, kindInsights, buildInsightsPrompt(est, input))
	if !ok {
		return nil, false
	}
	tips := ParseInsights(reply)
	if len(tips) == 0 {
		a.requests.Inc(kindInsights, outcomeEmpty)
		a.logger.Warn("ai insights reply had no usable tips")
		return nil, false
	}
	if payload, err := json.Marshal(tips); err == nil {
		a.store(ctx, key, string(payload))
	}
	return tips, true
}

// complete performs one bounded call and returns the trimmed reply.
func (a *Adapter) complete(ctx context.Context, kind, prompt string) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.requests.Inc(kind, outcomeError)
			a.logger.Error("ai call panicked", "kind", kind, "panic", fmt.Sprint(r))
			reply, ok = "", false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.timeout())
	defer cancel()

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err != nil {
		if chatgpt.IsRateLimited(err) {
			a.requests.Inc(kind, outcomeQuota)
			a.logger.Warn("ai quota exceeded, using rule based output", "kind", kind, "error", err)
			return "", false
		}
		a.requests.Inc(kind, outcomeError)
		a.logger.Error("ai call failed", "kind", kind, "error", err)
		return "", false
	}

	text := strings.TrimSpace(resp.FirstContent())
	if text == "" {
		a.requests.Inc(kind, outcomeEmpty)
		a.logger.Warn("ai reply was empty", "kind", kind)
		return "", false
	}

	usage := a.recordUsage(prompt, resp.Usage)
	a.requests.Inc(kind, outcomeSuccess)
	a.logger.Info("ai call completed",
		"kind", kind,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", usage.PromptTokens,
		"total_tokens", usage.TotalTokens,
	)
	return text, true
}

// recordUsage prefers provider usage and falls back to a local estimate of the prompt.
func (a *Adapter) recordUsage(prompt string, reported chatgpt.Usage) metrics.TokenUsage {
	usage := metrics.TokenUsage{
		PromptTokens:     reported.PromptTokens,
		CompletionTokens: reported.CompletionTokens,
		TotalTokens:      reported.TotalTokens,
	}
	if usage.IsZero() {
		estimated := a.counter.Count(systemPrompt) + a.counter.Count(prompt)
		usage = metrics.TokenUsage{PromptTokens: estimated, TotalTokens: estimated}
	}
	a.tokens.Add(uint64(usage.PromptTokens), "prompt")
	a.tokens.Add(uint64(usage.CompletionTokens), "completion")
	return usage
}

func (a *Adapter) lookup(ctx context.Context, key string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	value, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.cacheHit.Inc("error")
		a.logger.Warn("ai cache lookup failed", "key", key, "error", err)
		return "", false
	}
	if !ok {
		a.cacheHit.Inc("miss")
		return "", false
	}
	a.cacheHit.Inc("hit")
	return value, true
}

func (a *Adapter) store(ctx context.Context, key, value string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Save(ctx, key, value, a.cfg.CacheTTL); err != nil {
		a.logger.Warn("ai cache save failed", "key", key, "error", err)
	}
}

// cacheKey identifies a reply by everything its prompt depends on.
func cacheKey(kind string, est prediction.Estimation, input prediction.NormalizedInput, withQuantity bool) string {
	key := fmt.Sprintf("%s:%s:%d:%s", kind, input.MenuType, input.Attendance, est.Level)
	if withQuantity {
		key += ":" + formatQuantity(input.FoodQuantity)
	}
	return key
}

var _ prediction.Augmenter = (*Adapter)(nil)
