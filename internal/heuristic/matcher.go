// Package heuristic infers subtopic coverage from tutor replies.
//
// A reply that contains an affirmation ("great", "correct", ...) and names
// a subtopic of the current topic marks that subtopic as covered. The match
// is deliberately loose: substring containment, case-insensitive, with no
// attempt to tie the affirmation to the subtopic it praises.
package heuristic

import (
	"strings"

	"github.com/abhisek/pytutor/internal/progress"
)

// DefaultPhrases are the affirmations that signal understanding.
var DefaultPhrases = []string{
	"great",
	"excellent",
	"correct",
	"well done",
	"good job",
	"exactly",
	"that's right",
	"perfect",
	"nice work",
}

// Matcher marks subtopics completed when a reply affirms the learner.
type Matcher struct {
	phrases []string
}

// NewMatcher returns a Matcher for the given phrases, or DefaultPhrases
// when none are given.
func NewMatcher(phrases ...string) *Matcher {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Matcher{phrases: lowered}
}

// Affirms reports whether text contains any configured phrase.
func (m *Matcher) Affirms(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range m.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Apply inspects a tutor reply and marks every mentioned subtopic of the
// current topic as completed. It returns the names it marked.
func (m *Matcher) Apply(s *progress.Store, text string) []string {
	snap := s.Snapshot()
	topicID := snap.Topic.CurrentTopicID
	if topicID == "" || !m.Affirms(text) {
		return nil
	}

	lower := strings.ToLower(text)
	var marked []string
	for _, sp := range snap.Topic.Subtopics[topicID] {
		if strings.Contains(lower, strings.ToLower(sp.Name)) {
			s.UpdateSubtopic(topicID, sp.Name, true)
			marked = append(marked, sp.Name)
		}
	}
	return marked
}
