// Package client sends learner messages to the chat server and folds the
// streamed replies into a progress.Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/heuristic"
	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/store"
	"github.com/abhisek/pytutor/internal/trailer"
	"github.com/abhisek/pytutor/internal/tutor"
)

// ApologyMessage is shown in place of a reply when a request fails.
const ApologyMessage = "Sorry, I encountered an error. Please try again."

// DefaultHistoryWindow is how many prior messages accompany a request.
const DefaultHistoryWindow = 2

const chatPath = "/api/chat"

var (
	// ErrEmptyInput is returned for blank input. Nothing is sent.
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned while a previous request is still streaming.
	ErrBusy = errors.New("request already in progress")
	// ErrNoBody is returned when the server answers without any content.
	ErrNoBody = errors.New("empty response body")
)

// Options configures a Pipeline.
type Options struct {
	// ServerURL is the chat server base URL, e.g. http://127.0.0.1:8787.
	ServerURL string
	Store     *progress.Store

	// State persists the latest summarized reply. Optional.
	State store.LocalStateRepo
	// Matcher infers subtopic coverage. Defaults to heuristic.DefaultPhrases.
	Matcher *heuristic.Matcher

	HTTPClient    *http.Client
	HistoryWindow int
	Logger        *slog.Logger
}

// Pipeline submits learner input and streams the tutor's reply into the
// store. One request runs at a time.
type Pipeline struct {
	endpoint string
	store    *progress.Store
	state    store.LocalStateRepo
	matcher  *heuristic.Matcher
	http     *http.Client
	window   int
	logger   *slog.Logger

	busy atomic.Bool
}

// New creates a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("client: store is required")
	}
	if opts.ServerURL == "" {
		return nil, fmt.Errorf("client: server URL is required")
	}
	if opts.Matcher == nil {
		opts.Matcher = heuristic.NewMatcher()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		endpoint: strings.TrimRight(opts.ServerURL, "/") + chatPath,
		store:    opts.Store,
		state:    opts.State,
		matcher:  opts.Matcher,
		http:     opts.HTTPClient,
		window:   opts.HistoryWindow,
		logger:   opts.Logger,
	}, nil
}

// Submit sends input as the learner's next message and blocks until the
// reply has streamed in. Failures are recorded on the store as an error
// plus an apology message, and also returned.
func (p *Pipeline) Submit(ctx context.Context, input string) error {
	content := strings.TrimSpace(input)
	if content == "" {
		return ErrEmptyInput
	}
	if p.store.Loading() || !p.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.busy.Store(false)

	history := p.store.Messages()
	if len(history) > p.window {
		history = history[len(history)-p.window:]
	}

	userMsg := progress.Message{Role: progress.RoleUser, Content: content, ID: uuid.NewString()}
	p.store.AddMessage(userMsg)
	p.store.SetLoading(true)
	defer p.store.SetLoading(false)

	req := p.buildRequest(append(history, userMsg))
	if err := p.exchange(ctx, req); err != nil {
		p.store.SetError(err.Error())
		p.store.AddMessage(progress.Message{Role: progress.RoleAssistant, Content: ApologyMessage, ID: uuid.NewString()})
		return err
	}
	p.store.ClearError()
	return nil
}

func (p *Pipeline) buildRequest(messages []progress.Message) tutor.ChatRequest {
	req := tutor.ChatRequest{Messages: messages}
	snap := p.store.Snapshot()
	req.Understanding = string(snap.Topic.Understanding)
	if topic, ok := p.store.CurrentTopic(); ok {
		req.CurrentTopic = &topic
		req.Subtopics = snap.Topic.Subtopics[topic.ID]
	}
	return req
}

// exchange posts req and folds the streamed body into one assistant
// message that is republished after every chunk.
func (p *Pipeline) exchange(ctx context.Context, req tutor.ChatRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("chat request failed: %s", resp.Status)
	}

	replyID := uuid.NewString()
	var raw []byte
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			raw = append(raw, buf[:n]...)
			display, _ := trailer.SplitPartial(string(completeRunes(raw)))
			p.store.AddMessage(progress.Message{Role: progress.RoleAssistant, Content: display, ID: replyID})
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read chat response: %w", readErr)
		}
	}
	if len(raw) == 0 {
		return ErrNoBody
	}

	display, pr := trailer.Split(string(raw))
	p.store.AddMessage(progress.Message{Role: progress.RoleAssistant, Content: display, ID: replyID})

	if pr != nil && p.state != nil {
		rec := store.ProcessedRecord{Summary: pr.Summary, RandomNumber: pr.RandomNumber, OriginalResponse: display}
		if err := store.SaveProcessed(ctx, p.state, rec); err != nil {
			p.logger.Warn("persist processed response", "error", err)
		}
	}

	p.applyHeuristic(display)
	return nil
}

// applyHeuristic marks affirmed subtopics and congratulates the learner
// when that completes the current topic.
func (p *Pipeline) applyHeuristic(reply string) {
	topic, ok := p.store.CurrentTopic()
	if !ok {
		return
	}
	wasDone := p.store.IsTopicCompleted(topic.ID)
	marked := p.matcher.Apply(p.store, reply)
	if len(marked) > 0 {
		p.logger.Debug("subtopics covered", "topic", topic.ID, "subtopics", marked)
	}
	if !wasDone && p.store.IsTopicCompleted(topic.ID) {
		p.store.AddMessage(progress.Message{
			Role:    progress.RoleAssistant,
			Content: curriculum.TopicCompletedMessage,
			ID:      uuid.NewString(),
		})
	}
}

// completeRunes drops a trailing partial UTF-8 sequence.
func completeRunes(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}
