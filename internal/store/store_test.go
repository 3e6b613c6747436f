package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounterMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= last {
			t.Fatalf("sequence not increasing: %d after %d", n, last)
		}
		last = n
	}
}

func appendEvent(t *testing.T, repo EventRepo, data LLMRequestEventData) {
	t.Helper()
	if err := repo.AppendLLMRequest(context.Background(), data); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvent(t, repo, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4", Purpose: "tutor-chat",
		InputTokens: 100, OutputTokens: 50, LatencyMs: 900, Success: true,
		RequestBody: "[user]\nhi", ResponseBody: "hello",
	})
	appendEvent(t, repo, LLMRequestEventData{
		Provider: "openai", Model: "gpt-3.5-turbo", Purpose: "summary",
		InputTokens: 40, OutputTokens: 10, LatencyMs: 300, Success: false,
		ErrorMessage: "rate limited",
	})

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Purpose != "summary" {
		t.Errorf("expected newest first, got %q", events[0].Purpose)
	}
	if events[0].Success || events[0].ErrorMessage != "rate limited" {
		t.Errorf("failure not recorded: %+v", events[0])
	}
	if events[1].ResponseBody != "hello" || !events[1].Success {
		t.Errorf("unexpected first event: %+v", events[1])
	}
	if events[1].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "tutor-chat"})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Model != "gpt-4" {
		t.Errorf("filtered = %+v", filtered)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited len = %d, want 1", len(limited))
	}
}

func TestGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvent(t, repo, LLMRequestEventData{Model: "gpt-4", Purpose: "tutor-chat", Success: true})

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil || len(events) != 1 {
		t.Fatalf("query: %v (len %d)", err, len(events))
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.Model != "gpt-4" {
		t.Fatalf("event = %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvent(t, repo, LLMRequestEventData{Model: "gpt-4", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 20, LatencyMs: 100})
	appendEvent(t, repo, LLMRequestEventData{Model: "gpt-4", Purpose: "tutor-chat", InputTokens: 50, OutputTokens: 10, LatencyMs: 300})
	appendEvent(t, repo, LLMRequestEventData{Model: "gpt-3.5-turbo", Purpose: "summary", InputTokens: 10, OutputTokens: 5, LatencyMs: 50})

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("len = %d, want 2", len(byPurpose))
	}
	// Ordered by purpose name.
	chat := byPurpose[1]
	if chat.Purpose != "tutor-chat" || chat.Calls != 2 || chat.InputTokens != 150 || chat.OutputTokens != 30 {
		t.Errorf("tutor-chat usage = %+v", chat)
	}
	if chat.AvgLatencyMs != 200 {
		t.Errorf("avg latency = %d, want 200", chat.AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "gpt-4" || byModel[1].Calls != 2 {
		t.Errorf("by model = %+v", byModel)
	}
}

func TestLocalStatePutGetDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.LocalStateRepo()
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("get empty: ok=%v err=%v", ok, err)
	}
	if err := repo.Put(ctx, "k", "v1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := repo.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("get = %q, %v, %v", v, ok, err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Fatal("key still present after delete")
	}
}

func TestProcessedRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.LocalStateRepo()
	ctx := context.Background()

	rec := ProcessedRecord{Summary: "Classes bundle data.", RandomNumber: 512, OriginalResponse: "A class..."}
	if err := SaveProcessed(ctx, repo, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := LoadProcessed(ctx, repo)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if *got != rec {
		t.Errorf("got %+v, want %+v", *got, rec)
	}

	if err := ClearProcessed(ctx, repo); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := LoadProcessed(ctx, repo); ok {
		t.Fatal("record present after clear")
	}
}

func TestLoadProcessedIgnoresMalformed(t *testing.T) {
	s := openTestStore(t)
	repo := s.LocalStateRepo()
	ctx := context.Background()

	if err := repo.Put(ctx, ProcessedResponseKey, "{not json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec, ok, err := LoadProcessed(ctx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || rec != nil {
		t.Fatalf("malformed value returned: %+v", rec)
	}
}
