package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/pytutor/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := l.baseEvent(ctx, req, start, err)
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	l.record(ctx, data)
	return resp, err
}

// Stream records the event once the stream ends or is closed, with the
// full concatenated reply as the response body.
func (l *LoggingProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	start := time.Now()

	s, err := l.inner.Stream(ctx, req)
	if err != nil {
		l.record(ctx, l.baseEvent(ctx, req, start, err))
		return nil, err
	}

	return &loggedStream{
		inner: s,
		finish: func(text string, usage Usage, streamErr error) {
			data := l.baseEvent(ctx, req, start, streamErr)
			data.InputTokens = usage.InputTokens
			data.OutputTokens = usage.OutputTokens
			data.ResponseBody = text
			l.record(context.WithoutCancel(ctx), data)
		},
	}, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) Name() string {
	return providerName(l.inner)
}

func (l *LoggingProvider) baseEvent(ctx context.Context, req Request, start time.Time, err error) store.LLMRequestEventData {
	data := store.LLMRequestEventData{
		Provider:    providerName(l.inner),
		Model:       modelFor(req, l.inner.ModelID()),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	return data
}

func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData) {
	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}
}

// loggedStream accumulates the reply and reports it exactly once.
type loggedStream struct {
	inner  Stream
	finish func(text string, usage Usage, err error)

	buf  strings.Builder
	once sync.Once
}

func (s *loggedStream) Recv() (string, error) {
	delta, err := s.inner.Recv()
	s.buf.WriteString(delta)
	switch {
	case errors.Is(err, io.EOF):
		s.done(nil)
	case err != nil:
		s.done(err)
	}
	return delta, err
}

func (s *loggedStream) Usage() Usage { return s.inner.Usage() }

func (s *loggedStream) Close() error {
	s.done(errors.New("stream closed before completion"))
	return s.inner.Close()
}

func (s *loggedStream) done(err error) {
	s.once.Do(func() {
		s.finish(s.buf.String(), s.inner.Usage(), err)
	})
}

// providerName returns a short vendor name for p, falling back to its
// model ID.
func providerName(p Provider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return p.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
