package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
	"github.com/abhisek/pytutor/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

const snakeArt = `    ▄▄▄▄
   █ ◉  █▄
   ▀▀▀█  █
  ▄▄▄▄█  █
 █  ▄▄▄▄▀
 █  █▄▄▄▄
  ▀▄▄▄▄▄▀`

type tickMsg time.Time

// WelcomeScreen shows the banner and welcome note before handing over to
// the topic list.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by next.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		// Any key skips ahead once the banner is on screen.
		if w.elapsed >= phase1End {
			return w, w.transition()
		}
		return w, nil
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{lipgloss.NewStyle().Foreground(theme.Secondary).Render(snakeArt)}

	if w.elapsed >= phase1End {
		sections = append(sections, "", RenderBanner(width), "")

		msgWidth := min(width-4, 72)
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Width(msgWidth).
			Align(lipgloss.Center).
			Render(curriculum.WelcomeMessage))
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "", theme.Hint.Render("press any key to pick a topic"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
