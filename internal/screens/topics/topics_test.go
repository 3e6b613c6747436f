package topics

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.title }
func (s *stubScreen) Title() string                          { return s.title }

func newTestTopics(st *progress.Store) *TopicsScreen {
	return New(st,
		func() screen.Screen { return &stubScreen{title: "chat"} },
		func() screen.Screen { return &stubScreen{title: "summary"} },
	)
}

func TestEnterFocusesTopicAndPushesChat(t *testing.T) {
	st := progress.New(curriculum.Default())
	s := newTestTopics(st)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "chat" {
		t.Errorf("pushed %q, want chat", push.Screen.Title())
	}

	cur, ok := st.CurrentTopic()
	if !ok || cur.ID != "classes_objects" {
		t.Errorf("current topic = %+v, want classes_objects", cur)
	}
	if n := len(st.Messages()); n != 2 {
		t.Errorf("messages = %d, want 2 (focus note and greeting)", n)
	}
}

func TestReselectingCurrentTopicDoesNotRepeatGreeting(t *testing.T) {
	st := progress.New(curriculum.Default())
	s := newTestTopics(st)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if n := len(st.Messages()); n != 2 {
		t.Errorf("messages = %d, want 2", n)
	}
}

func TestNavigateToSecondTopic(t *testing.T) {
	st := progress.New(curriculum.Default())
	s := newTestTopics(st)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}

	cur, _ := st.CurrentTopic()
	if cur.ID != "attributes_methods" {
		t.Errorf("current topic = %q, want attributes_methods", cur.ID)
	}
}

func TestSummaryKey(t *testing.T) {
	s := newTestTopics(progress.New(curriculum.Default()))

	_, cmd := s.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	if cmd == nil {
		t.Fatal("expected a command on S")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "summary" {
		t.Errorf("expected push of summary screen, got %#v", cmd())
	}
}

func TestViewMarksCompletedTopics(t *testing.T) {
	st := progress.New(curriculum.Default())
	s := newTestTopics(st)

	st.SetCurrentTopic("classes_objects")
	for _, name := range []string{"Class Definition", "Object Instantiation", "self Parameter"} {
		st.UpdateSubtopic("classes_objects", name, true)
	}
	s.Update(screen.StoreChangedMsg{})

	view := s.View(100, 40)
	if !strings.Contains(view, "✓") {
		t.Error("expected a completion mark after the topic is completed")
	}
	if !strings.Contains(view, "1/2") {
		t.Error("expected the Basics section to count one of two topics")
	}
}
