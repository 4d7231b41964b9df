// Package service is the only component that talks to the remote
// chat-completion endpoint.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"bootstrap/failure"
	"bootstrap/logging"
	"bootstrap/message"
	"bootstrap/metrics"
	"bootstrap/ratelimiter"
	"bootstrap/usage"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Config configures a Service. APIKey is required.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	// RequestsPerMinute enables client-side pacing when positive.
	RequestsPerMinute int

	Logger   *log.Logger
	Recorder metrics.Recorder
	Tracker  *usage.Tracker
}

// Service sends prompt requests to the remote model.
type Service struct {
	client   openai.Client
	model    string
	logger   *log.Logger
	limiter  *ratelimiter.TokenBucket
	counter  *usage.TokenCounter
	recorder metrics.Recorder
	tracker  *usage.Tracker
}

// New builds a Service. A missing API key is reported as a
// *failure.ConfigurationError before any network activity.
func New(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, &failure.ConfigurationError{Key: "GPT_API_KEY"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}

	// Retries are disabled: a failed call surfaces immediately.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	counter, err := usage.NewTokenCounter(cfg.Model)
	if err != nil {
		cfg.Logger.Warn("Token counting disabled", "error", err, "model", cfg.Model)
		counter = nil
	}

	s := &Service{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		logger:   cfg.Logger,
		counter:  counter,
		recorder: cfg.Recorder,
		tracker:  cfg.Tracker,
	}
	if cfg.RequestsPerMinute > 0 {
		s.limiter = ratelimiter.PerMinute(cfg.RequestsPerMinute)
	}
	return s, nil
}

// Model returns the model identifier sent with every request.
func (s *Service) Model() string {
	return s.model
}

// Close releases the rate limiter, if any.
func (s *Service) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// SendPrompt issues one non-streamed completion call and returns the first
// choice. The request is read, never modified. Every failure is logged and
// returned as a *failure.ServiceFailure.
func (s *Service) SendPrompt(ctx context.Context, req message.PromptRequest) (message.Completion, error) {
	logger := logging.FromContext(ctx, s.logger)
	agentID := logging.AgentID(ctx)
	start := time.Now()

	fail := func(kind failure.Kind, cause error) (message.Completion, error) {
		logger.Error("GPT API Error", "error", cause, "kind", kind, "model", s.model, "duration", time.Since(start))
		s.recorder.ObserveRequest(s.model, agentID, 0, 0, 0, string(kind), time.Since(start))
		return message.Completion{}, failure.NewServiceFailure(kind, failure.MsgServiceCommunication, cause)
	}

	if err := req.Validate(); err != nil {
		return fail(failure.KindInvalidRequest, err)
	}

	var inputTokens int
	if s.counter != nil {
		inputTokens = s.counter.CountPrompt(req)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fail(failure.KindUnknown, fmt.Errorf("request rate limit: %w", err))
		}
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: toParams(req),
	})
	if err != nil {
		return fail(classify(err), err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return fail(failure.KindMalformed, errors.New("response contains no choices"))
	}

	completion := toCompletion(resp)
	duration := time.Since(start)
	cost := usage.Cost(s.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	logger.Debug("Completion message", "role", completion.Message.Role, "content", completion.Message.Content)
	logger.Info("GPT API request completed",
		"model", completion.Model,
		"estimated_input_tokens", inputTokens,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"expected_cost_usd", cost,
		"duration", duration,
		"completion_id", completion.ID,
	)

	s.recorder.ObserveRequest(s.model, agentID, completion.Usage.PromptTokens, completion.Usage.CompletionTokens, cost, "", duration)
	if s.tracker != nil {
		s.tracker.Record(agentID, s.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	return completion, nil
}

func toParams(req message.PromptRequest) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(req))
	for _, m := range req {
		switch m.Role {
		case message.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case message.RoleDeveloper:
			params = append(params, openai.DeveloperMessage(m.Content))
		case message.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}

func toCompletion(resp *openai.ChatCompletion) message.Completion {
	choice := resp.Choices[0].Message

	role, err := message.ParseRole(string(choice.Role))
	if err != nil {
		role = message.RoleAssistant
	}

	return message.Completion{
		ID:      resp.ID,
		Model:   resp.Model,
		Message: message.Message{Role: role, Content: choice.Content},
		Usage: message.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// classify maps an SDK error onto a failure kind.
func classify(err error) failure.Kind {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return failure.KindStatus
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return failure.KindNetwork
	}

	return failure.KindMalformed
}
