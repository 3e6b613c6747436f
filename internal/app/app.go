package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
	"github.com/abhisek/pytutor/internal/screens/chat"
	"github.com/abhisek/pytutor/internal/screens/summary"
	"github.com/abhisek/pytutor/internal/screens/topics"
	"github.com/abhisek/pytutor/internal/screens/welcome"
	"github.com/abhisek/pytutor/internal/store"
	"github.com/abhisek/pytutor/internal/ui/layout"
)

// Options holds the collaborators the UI drives.
type Options struct {
	Store     *progress.Store
	Submitter chat.Submitter
	State     store.LocalStateRepo
	// SkipWelcome starts on the topic list.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	store  *progress.Store
	width  int
	height int
}

// newAppModel wires the screens together around one store.
func newAppModel(opts Options) AppModel {
	openSummary := func() screen.Screen { return summary.New(opts.State) }
	openChat := func() screen.Screen { return chat.New(opts.Store, opts.Submitter, openSummary) }
	openTopics := func() screen.Screen { return topics.New(opts.Store, openChat, openSummary) }

	var first screen.Screen
	if opts.SkipWelcome {
		first = openTopics()
	} else {
		first = welcome.New(openTopics)
	}
	return AppModel{
		router: router.New(first),
		store:  opts.Store,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				if bh, ok := m.router.Active().(screen.BackHandler); ok {
					return m, bh.Back()
				}
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.store.Progress().OverallPercent, m.store.UserMessageCount(), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits. Store
// mutations made off the UI loop, such as a streaming reply, trigger a
// redraw.
func Run(opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("app: store is required")
	}
	if opts.Submitter == nil {
		return fmt.Errorf("app: submitter is required")
	}

	p := tea.NewProgram(newAppModel(opts))

	changed := make(chan struct{}, 1)
	opts.Store.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-changed:
				p.Send(screen.StoreChangedMsg{})
			case <-done:
				return
			}
		}
	}()

	_, err := p.Run()
	close(done)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
