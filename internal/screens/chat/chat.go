// Package chat is the conversation screen.
package chat

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/pytutor/internal/client"
	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
	"github.com/abhisek/pytutor/internal/ui/components"
	"github.com/abhisek/pytutor/internal/ui/layout"
)

const spinnerInterval = 120 * time.Millisecond

// Submitter sends one learner message and blocks until the reply is in.
type Submitter interface {
	Submit(ctx context.Context, input string) error
}

// ChatScreen shows the transcript for the current topic and accepts input.
type ChatScreen struct {
	store       *progress.Store
	submitter   Submitter
	openSummary func() screen.Screen
	input       components.TextInput
	frame       int
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen.
func New(st *progress.Store, submitter Submitter, openSummary func() screen.Screen) *ChatScreen {
	return &ChatScreen{
		store:       st,
		submitter:   submitter,
		openSummary: openSummary,
		input:       components.NewTextInput("Ask the tutor a question...", 2000),
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	if topic, ok := c.store.CurrentTopic(); ok {
		return topic.Title
	}
	return "Chat"
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Topics"},
	}
	if topic, ok := c.store.CurrentTopic(); ok && c.store.IsTopicCompleted(topic.ID) {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Next topic"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+S", Description: "Summary"})
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyDoneMsg:
		c.input.SetDisabled(false)
		return c, nil

	case spinnerTickMsg:
		if !c.store.Loading() {
			return c, nil
		}
		c.frame++
		return c, spinnerTick()

	case screen.StoreChangedMsg:
		return c, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return c.send()
		case "ctrl+n":
			if id, ok := c.store.MoveToNextTopic(); ok {
				c.store.FocusTopic(id)
			}
			return c, nil
		case "ctrl+s":
			if c.openSummary != nil {
				summary := c.openSummary()
				return c, func() tea.Msg { return router.PushScreenMsg{Screen: summary} }
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// send hands the input to the submitter on a background command. The store
// tracks loading, so a second Enter while a reply streams is ignored.
func (c *ChatScreen) send() (screen.Screen, tea.Cmd) {
	if c.store.Loading() || c.input.Disabled() {
		return c, nil
	}
	text := c.input.Value()
	c.input.Reset()
	c.input.SetDisabled(true)

	submit := func() tea.Msg {
		err := c.submitter.Submit(context.Background(), text)
		if errors.Is(err, client.ErrEmptyInput) {
			err = nil
		}
		return replyDoneMsg{Err: err}
	}
	return c, tea.Batch(submit, spinnerTick())
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
