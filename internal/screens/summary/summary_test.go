package summary

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/store"
)

type memoryState struct {
	values map[string]string
}

func newMemoryState() *memoryState {
	return &memoryState{values: map[string]string{}}
}

func (m *memoryState) Put(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memoryState) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryState) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func loadScreen(t *testing.T, state store.LocalStateRepo) *SummaryScreen {
	t.Helper()
	s := New(state)
	if cmd := s.Init(); cmd != nil {
		s.Update(cmd())
	}
	return s
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(nil)
	if s.Title() != "Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Summary")
	}
}

func TestSummaryScreen_ShowsStoredRecord(t *testing.T) {
	state := newMemoryState()
	err := store.SaveProcessed(context.Background(), state, store.ProcessedRecord{
		Summary:          "Classes are blueprints",
		RandomNumber:     512,
		OriginalResponse: "A class describes the shape of its objects.",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	view := loadScreen(t, state).View(100, 40)
	for _, want := range []string{"Classes are blueprints", "Random Number: 512", "shape of its objects"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_FallbackWhenMissing(t *testing.T) {
	view := loadScreen(t, newMemoryState()).View(100, 40)
	if !strings.Contains(view, DefaultTitle) {
		t.Error("expected fallback title")
	}
	if !strings.Contains(view, DefaultHeading) {
		t.Error("expected fallback heading")
	}
}

func TestSummaryScreen_FallbackWhenMalformed(t *testing.T) {
	state := newMemoryState()
	state.values[store.ProcessedResponseKey] = "{not json"

	view := loadScreen(t, state).View(100, 40)
	if !strings.Contains(view, DefaultTitle) {
		t.Error("malformed record should fall back to default text")
	}
}

func TestSummaryScreen_BackClearsRecord(t *testing.T) {
	state := newMemoryState()
	store.SaveProcessed(context.Background(), state, store.ProcessedRecord{Summary: "x", RandomNumber: 1})
	s := loadScreen(t, state)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if _, ok := state.values[store.ProcessedResponseKey]; ok {
		t.Error("record should be cleared on back")
	}
}

func TestSummaryScreen_EscBackClearsRecord(t *testing.T) {
	state := newMemoryState()
	store.SaveProcessed(context.Background(), state, store.ProcessedRecord{Summary: "x", RandomNumber: 1})
	s := loadScreen(t, state)

	if _, ok := s.Back()().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if len(state.values) != 0 {
		t.Error("record should be cleared")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	if len(New(nil).KeyHints()) != 2 {
		t.Error("expected two key hints")
	}
}
