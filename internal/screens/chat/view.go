package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/progress"
	"github.com/abhisek/pytutor/internal/ui/components"
	"github.com/abhisek/pytutor/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (c *ChatScreen) View(width, height int) string {
	snap := c.store.Snapshot()
	inner := max(width-4, 10)

	top := c.renderProgress(inner)

	var bottom []string
	if len(snap.Messages) > curriculum.MaxMessages {
		bottom = append(bottom, theme.Hint.Render("Long conversation: only the latest turns reach the tutor."))
	}
	if snap.HasError {
		bottom = append(bottom, theme.Failed.Render("Error: "+snap.Error))
	}
	if snap.Loading {
		frame := spinnerFrames[c.frame%len(spinnerFrames)]
		bottom = append(bottom, lipgloss.NewStyle().Foreground(theme.Secondary).Render(frame+" Tutor is typing..."))
	}
	bottom = append(bottom, c.input.View())
	footer := strings.Join(bottom, "\n")

	transcriptHeight := height - lipgloss.Height(top) - lipgloss.Height(footer) - 2
	transcript := renderTranscript(snap.Messages, inner, max(transcriptHeight, 1))

	body := lipgloss.JoinVertical(lipgloss.Left, top, transcript, footer)
	return lipgloss.NewStyle().Padding(0, 2).Render(body)
}

func (c *ChatScreen) renderProgress(width int) string {
	topic, ok := c.store.CurrentTopic()
	if !ok {
		return theme.Hint.Render("No topic selected. Press Esc to pick one.")
	}
	sum := c.store.Progress()
	section := c.store.Catalog().SectionTitle(topic.ID)

	label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("%s · %s", section, topic.Title))
	counts := theme.Hint.Render(fmt.Sprintf("%d/%d subtopics covered", sum.CompletedSubtopics, sum.TotalSubtopics))
	bar := components.NewProgressBar("Topic", sum.TopicPercent, true, min(width, 60)).View()

	return label + "  " + counts + "\n" + bar + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width))
}

// renderTranscript wraps every message and keeps the most recent lines that
// fit in height.
func renderTranscript(msgs []progress.Message, width, height int) string {
	var lines []string
	body := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
	for _, m := range msgs {
		var block string
		switch m.Role {
		case progress.RoleUser:
			block = theme.UserLabel.Render("You") + "\n" + body.Render(m.Content)
		case progress.RoleAssistant:
			block = theme.TutorLabel.Render("Tutor") + "\n" + body.Render(m.Content)
		default:
			block = theme.SystemNote.Width(width).Render(m.Content)
		}
		lines = append(lines, strings.Split(block, "\n")...)
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}
