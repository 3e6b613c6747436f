// Package summary shows the most recent summarized tutor reply.
package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
	"github.com/abhisek/pytutor/internal/store"
	"github.com/abhisek/pytutor/internal/ui/layout"
	"github.com/abhisek/pytutor/internal/ui/theme"
)

// Fallback text for when no summary has been stored.
const (
	DefaultTitle   = "INTERACTIVE PYTHON LEARNING"
	DefaultHeading = "WHAT'S OOP?"
	DefaultBody    = "Object-oriented programming organizes code around objects that bundle state and behaviour. Pick a topic and chat with the tutor to see a summary here."
)

// loadedMsg carries the stored record, if any.
type loadedMsg struct {
	Record *store.ProcessedRecord
	Err    error
}

// SummaryScreen displays the last processed response. Leaving the screen
// clears the stored record.
type SummaryScreen struct {
	state  store.LocalStateRepo
	record *store.ProcessedRecord
	loaded bool
	err    error
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.BackHandler = (*SummaryScreen)(nil)

// New creates a SummaryScreen reading from state. A nil state always shows
// the fallback text.
func New(state store.LocalStateRepo) *SummaryScreen {
	return &SummaryScreen{state: state}
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.state == nil {
		s.loaded = true
		return nil
	}
	state := s.state
	return func() tea.Msg {
		rec, _, err := store.LoadProcessed(context.Background(), state)
		return loadedMsg{Record: rec, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		s.record = msg.Record
		s.err = msg.Err
		return s, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "b":
			return s, s.Back()
		}
	}
	return s, nil
}

// Back clears the stored record and leaves the screen.
func (s *SummaryScreen) Back() tea.Cmd {
	state := s.state
	return func() tea.Msg {
		if state != nil {
			_ = store.ClearProcessed(context.Background(), state)
		}
		return router.PopScreenMsg{}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	if !s.loaded {
		return theme.Hint.Render("\n  Loading summary...")
	}

	title, heading, body := DefaultTitle, DefaultHeading, DefaultBody
	if s.record != nil {
		if s.record.Summary != "" {
			title = s.record.Summary
		}
		heading = fmt.Sprintf("Random Number: %d", s.record.RandomNumber)
		if s.record.OriginalResponse != "" {
			body = s.record.OriginalResponse
		}
	}

	cardWidth := min(width-8, 80)
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Secondary).
		Render("FOR EVERYONE, ANYTIME, ANYWHERE"))
	b.WriteString("\n\n")

	bodyLines := strings.Split(lipgloss.NewStyle().Width(cardWidth-6).Render(body), "\n")
	if maxLines := height - 12; maxLines > 0 && len(bodyLines) > maxLines {
		bodyLines = append(bodyLines[:maxLines], "…")
	}

	card := theme.Card.Width(cardWidth).Render(
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(heading) +
			"\n\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(strings.Join(bodyLines, "\n")))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))

	if s.err != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Failed.Render("Could not read summary: "+s.err.Error())))
	}

	return b.String()
}
