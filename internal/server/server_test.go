package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/trailer"
	"github.com/abhisek/pytutor/internal/tutor"
)

// fakeChat emits fixed chunks and then returns err.
type fakeChat struct {
	chunks []string
	err    error
	got    tutor.ChatRequest
	ctx    context.Context
}

func (f *fakeChat) Stream(ctx context.Context, req tutor.ChatRequest, emit func(string) error) error {
	f.got = req
	f.ctx = ctx
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return f.err
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	srv, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
  "messages": [{"role": "user", "content": "What is a class?", "id": "u1"}],
  "currentTopic": {"id": "classes_objects", "title": "Classes and Objects", "subtopics": ["Class Definition"]},
  "understanding": "learning",
  "subtopics": [{"name": "Class Definition", "completed": false}]
}`

func TestNew_RequiresChat(t *testing.T) {
	_, err := New(Options{})
	if err == nil {
		t.Fatal("expected error for missing chat service")
	}
	if !strings.Contains(err.Error(), "chat service is required") {
		t.Errorf("error = %q", err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestTopics(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/topics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Sections []curriculum.Section `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sections) != len(curriculum.Default().Sections()) {
		t.Errorf("sections = %d, want %d", len(body.Sections), len(curriculum.Default().Sections()))
	}
}

func TestChat_StreamsPlainText(t *testing.T) {
	chat := &fakeChat{chunks: []string{"A class ", "is a blueprint."}}
	srv := newTestServer(t, Options{Chat: chat})

	rec := postChat(t, srv.Handler(), validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.String() != "A class is a blueprint." {
		t.Errorf("body = %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("expected response to be flushed")
	}

	if chat.got.CurrentTopic == nil || chat.got.CurrentTopic.ID != "classes_objects" {
		t.Errorf("currentTopic = %+v", chat.got.CurrentTopic)
	}
	if len(chat.got.Messages) != 1 || chat.got.Messages[0].Content != "What is a class?" {
		t.Errorf("messages = %+v", chat.got.Messages)
	}
}

func TestChat_WithTutorServiceAppendsTrailer(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Chunks: []string{"Objects ", "hold state."}},
		llm.MockResponse{Content: json.RawMessage(`{"summary":"Objects hold state."}`)},
	)
	svc := tutor.NewService(mock, tutor.DefaultConfig(), nil)
	srv := newTestServer(t, Options{Chat: svc})

	rec := postChat(t, srv.Handler(), validBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	display, pr := trailer.Split(rec.Body.String())
	if display != "Objects hold state." {
		t.Errorf("display = %q", display)
	}
	if pr == nil {
		t.Fatal("expected trailer in body")
	}
	if pr.Summary != "Objects hold state." {
		t.Errorf("summary = %q", pr.Summary)
	}
	if pr.RandomNumber < 1 || pr.RandomNumber > 1000 {
		t.Errorf("randomNumber = %d out of range", pr.RandomNumber)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	chat := &fakeChat{}
	srv := newTestServer(t, Options{Chat: chat})

	rec := postChat(t, srv.Handler(), `{"messages": [`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestChat_FailureBeforeFirstByte(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{err: errors.New("provider down")}})

	rec := postChat(t, srv.Handler(), validBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestChat_FailureMidStreamKeepsPartialBody(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{
		chunks: []string{"partial "},
		err:    errors.New("connection reset"),
	}})

	rec := postChat(t, srv.Handler(), validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "partial " {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestChat_ProviderErrorFromTutorService(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	svc := tutor.NewService(mock, tutor.DefaultConfig(), nil)
	srv := newTestServer(t, Options{Chat: svc})

	rec := postChat(t, srv.Handler(), validBody)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestChat_EmptyReplyIsOK(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{}})

	rec := postChat(t, srv.Handler(), validBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestChat_Timeout(t *testing.T) {
	chat := &fakeChat{}
	srv := newTestServer(t, Options{Chat: chat, Timeout: time.Minute})

	postChat(t, srv.Handler(), validBody)

	if chat.ctx == nil {
		t.Fatal("chat was not called")
	}
	if _, ok := chat.ctx.Deadline(); !ok {
		t.Error("expected chat context to carry a deadline")
	}
}

func TestChat_RateLimited(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{}, RateLimit: 0.001, Burst: 1})

	first := postChat(t, srv.Handler(), validBody)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}

	second := postChat(t, srv.Handler(), validBody)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if !strings.Contains(second.Body.String(), `"error":"rate limited"`) {
		t.Errorf("body = %q", second.Body.String())
	}

	// Topics are not limited.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/topics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("topics status = %d, want 200", rec.Code)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(t, Options{Chat: &fakeChat{chunks: []string{"hi"}}})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/chat"
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(validBody))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if buf.String() != "hi" {
		t.Errorf("body = %q, want hi", buf.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
