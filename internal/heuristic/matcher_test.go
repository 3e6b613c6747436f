package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/progress"
)

func TestApply_MarksOnlyMentionedSubtopic(t *testing.T) {
	s := progress.New(curriculum.Default())
	s.SetCurrentTopic("classes_objects")

	marked := NewMatcher().Apply(s, "Great! You covered self Parameter well.")
	require.Equal(t, []string{"self Parameter"}, marked)

	subs := s.Snapshot().Topic.Subtopics["classes_objects"]
	for _, sp := range subs {
		assert.Equal(t, sp.Name == "self Parameter", sp.Completed, sp.Name)
	}
	assert.False(t, s.IsTopicCompleted("classes_objects"))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		text   string
		marked []string
	}{
		{
			name:  "no affirmation",
			topic: "classes_objects",
			text:  "Let's look at the self Parameter next.",
		},
		{
			name:  "no current topic",
			topic: "",
			text:  "Excellent, the self Parameter is right.",
		},
		{
			name:   "case insensitive",
			topic:  "inheritance",
			text:   "THAT'S RIGHT, single inheritance and method overriding work like that.",
			marked: []string{"Single Inheritance", "Method Overriding"},
		},
		{
			name:   "affirmation anywhere",
			topic:  "creational",
			text:   "A Singleton ensures one instance. Well done on the Factory Method too.",
			marked: []string{"Singleton", "Factory Method"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := progress.New(curriculum.Default())
			if tt.topic != "" {
				s.SetCurrentTopic(tt.topic)
			}
			got := NewMatcher().Apply(s, tt.text)
			assert.Equal(t, tt.marked, got)
		})
	}
}

func TestApply_CompletesTopic(t *testing.T) {
	s := progress.New(curriculum.Default())
	s.SetCurrentTopic("classes_objects")

	NewMatcher().Apply(s, "Perfect: class definition, object instantiation and the self parameter are all clear.")
	assert.True(t, s.IsTopicCompleted("classes_objects"))
	assert.Equal(t, float64(100), s.Progress().TopicPercent)
}

func TestNewMatcher_CustomPhrases(t *testing.T) {
	m := NewMatcher("Bravo", " ")
	assert.True(t, m.Affirms("bravo!"))
	assert.False(t, m.Affirms("great"))
}
