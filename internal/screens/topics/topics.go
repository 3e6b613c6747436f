// Package topics renders the curriculum as a selectable list.
package topics

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/router"
	"github.com/abhisek/pytutor/internal/screen"
	"github.com/abhisek/pytutor/internal/ui/components"
	"github.com/abhisek/pytutor/internal/ui/layout"
	"github.com/abhisek/pytutor/internal/ui/theme"
)

// TopicsScreen lists every section and topic with completion marks.
type TopicsScreen struct {
	store       *progress.Store
	openChat    func() screen.Screen
	openSummary func() screen.Screen
	menu        components.Menu
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen. Picking a topic focuses it on st and pushes
// the screen returned by openChat.
func New(st *progress.Store, openChat, openSummary func() screen.Screen) *TopicsScreen {
	t := &TopicsScreen{store: st, openChat: openChat, openSummary: openSummary}
	t.menu = t.buildMenu()
	return t
}

func (t *TopicsScreen) buildMenu() components.Menu {
	completed := map[string]bool{}
	for _, id := range t.store.Snapshot().Topic.CompletedTopics {
		completed[id] = true
	}
	current, hasCurrent := t.store.CurrentTopic()
	counts := t.store.SectionProgress()

	var items []components.MenuItem
	for i, sec := range t.store.Catalog().Sections() {
		items = append(items, components.MenuItem{
			Label:   sec.Title,
			Detail:  theme.Hint.Render(fmt.Sprintf("%d/%d", counts[i].Completed, counts[i].Total)),
			Heading: true,
		})
		for _, topic := range sec.Topics {
			var detail string
			switch {
			case completed[topic.ID]:
				detail = theme.Completed.Render("✓")
			case hasCurrent && current.ID == topic.ID:
				detail = lipgloss.NewStyle().Foreground(theme.Accent).Render("● in progress")
			}
			items = append(items, components.MenuItem{
				Label:  topic.Title,
				Detail: detail,
				Action: t.pick(topic.ID),
			})
		}
	}

	menu := components.NewMenu(items)
	if t.menu.Items != nil {
		menu.Selected = t.menu.Selected
	}
	return menu
}

// pick focuses the topic, unless it is already current, and opens the chat.
func (t *TopicsScreen) pick(topicID string) func() tea.Cmd {
	return func() tea.Cmd {
		if cur, ok := t.store.CurrentTopic(); !ok || cur.ID != topicID {
			t.store.FocusTopic(topicID)
		}
		chat := t.openChat()
		return func() tea.Msg { return router.PushScreenMsg{Screen: chat} }
	}
}

func (t *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (t *TopicsScreen) Title() string {
	return "Topics"
}

func (t *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study"},
		{Key: "S", Description: "Last summary"},
	}
}

func (t *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.StoreChangedMsg:
		t.menu = t.buildMenu()
		return t, nil
	case tea.KeyPressMsg:
		if msg.String() == "s" && t.openSummary != nil {
			summary := t.openSummary()
			return t, func() tea.Msg { return router.PushScreenMsg{Screen: summary} }
		}
	}

	var cmd tea.Cmd
	t.menu, cmd = t.menu.Update(msg)
	return t, cmd
}

func (t *TopicsScreen) View(width, height int) string {
	sum := t.store.Progress()
	bar := components.NewProgressBar("Overall", sum.OverallPercent, true, min(width-4, 60)).View()

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Python OOP Curriculum"),
		"",
		bar,
		"",
		t.menu.View(),
	)
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
