// Package tutor produces streamed tutor replies for a conversation and
// optionally appends a summary trailer.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/trailer"
)

// LLM purposes recorded with each request.
const (
	PurposeChat    = "tutor-chat"
	PurposeSummary = "summary"
)

// Config tunes the chat and summary requests.
type Config struct {
	Temperature float64
	MaxTokens   int

	// Summarize enables the secondary summary trailer.
	Summarize          bool
	SummaryModel       string // empty uses the provider's model
	SummaryMaxTokens   int
	SummaryTemperature float64
}

// DefaultConfig returns the settings the tutor was tuned with.
func DefaultConfig() Config {
	return Config{
		Temperature:        0.7,
		MaxTokens:          800,
		Summarize:          true,
		SummaryMaxTokens:   100,
		SummaryTemperature: 0.7,
	}
}

// summaryOutput is the structured reply requested from the summary pass.
type summaryOutput struct {
	Summary string `json:"summary" jsonschema:"description=One or two sentence summary of the teaching response"`
}

var summarySchema = llm.MustSchemaFor[summaryOutput]("reply-summary", "A very concise summary of a teaching response")

// Service streams tutor replies through an llm.Provider.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger
	randInt  func() int
}

// NewService creates a Service. A nil logger discards log output.
func NewService(provider llm.Provider, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		randInt:  func() int { return rand.IntN(1000) + 1 },
	}
}

// Stream generates the tutor's reply to req, calling emit with each text
// delta as it arrives. When summarization is enabled and the reply
// completed, a trailer is emitted last. A failed summary is logged and
// the trailer omitted.
func (s *Service) Stream(ctx context.Context, req ChatRequest, emit func(string) error) error {
	llmReq := llm.Request{
		System:      BuildTeachingPrompt(req.CurrentTopic, req.Understanding, req.Subtopics),
		Messages:    req.llmMessages(),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	stream, err := s.provider.Stream(llm.WithPurpose(ctx, PurposeChat), llmReq)
	if err != nil {
		return fmt.Errorf("start completion: %w", err)
	}
	defer stream.Close()

	var full []byte
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read completion: %w", err)
		}
		if delta == "" {
			continue
		}
		full = append(full, delta...)
		if err := emit(delta); err != nil {
			return fmt.Errorf("emit: %w", err)
		}
	}

	if !s.cfg.Summarize {
		return nil
	}

	pr, err := s.summarize(ctx, string(full))
	if err != nil {
		s.logger.Warn("summary pass failed", "error", err)
		return nil
	}
	marker, err := trailer.Format(*pr)
	if err != nil {
		s.logger.Warn("format summary trailer", "error", err)
		return nil
	}
	return emit(marker)
}

func (s *Service) summarize(ctx context.Context, reply string) (*trailer.ProcessedResponse, error) {
	resp, err := s.provider.Generate(llm.WithPurpose(ctx, PurposeSummary), llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSummaryPrompt(reply)}},
		Schema:      summarySchema,
		Model:       s.cfg.SummaryModel,
		MaxTokens:   s.cfg.SummaryMaxTokens,
		Temperature: s.cfg.SummaryTemperature,
	})
	if err != nil {
		return nil, err
	}

	var out summaryOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &trailer.ProcessedResponse{Summary: out.Summary, RandomNumber: s.randInt()}, nil
}
