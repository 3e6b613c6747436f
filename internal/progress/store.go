package progress

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/pytutor/internal/curriculum"
)

// ErrUnknownUnderstanding is returned when an invalid stage is set.
var ErrUnknownUnderstanding = errors.New("unknown understanding level")

// Store is the single source of truth for one tutoring session: the
// conversation, the request status and curriculum progress.
// All methods are safe for concurrent use.
type Store struct {
	catalog *curriculum.Catalog

	mu        sync.Mutex
	messages  []Message
	loading   bool
	err       string
	hasErr    bool
	topic     TopicProgress
	observers []func()
}

// New creates an empty Store over the given catalog.
func New(catalog *curriculum.Catalog) *Store {
	return &Store{
		catalog: catalog,
		topic:   emptyTopicProgress(),
	}
}

func emptyTopicProgress() TopicProgress {
	return TopicProgress{
		Subtopics:     make(map[string][]SubtopicProgress),
		Understanding: NotStarted,
	}
}

// Catalog returns the curriculum this store tracks.
func (s *Store) Catalog() *curriculum.Catalog {
	return s.catalog
}

// Subscribe registers fn to be called after every mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// update runs fn under the lock and then notifies observers outside it,
// so observers may read the store.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	obs := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range obs {
		o()
	}
}

// AddMessage appends m, or replaces the existing message with the same ID
// in place.
func (s *Store) AddMessage(m Message) {
	s.update(func() {
		if i := slices.IndexFunc(s.messages, func(x Message) bool { return x.ID == m.ID }); i >= 0 {
			s.messages[i] = m
			return
		}
		s.messages = append(s.messages, m)
	})
}

// Messages returns a copy of the conversation.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// UserMessageCount returns the number of messages authored by the learner.
func (s *Store) UserMessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

func (s *Store) SetLoading(loading bool) {
	s.update(func() { s.loading = loading })
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetError records a user-visible error message.
func (s *Store) SetError(msg string) {
	s.update(func() {
		s.err = msg
		s.hasErr = true
	})
}

func (s *Store) ClearError() {
	s.update(func() {
		s.err = ""
		s.hasErr = false
	})
}

// Err returns the current error message and whether one is set.
func (s *Store) Err() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err, s.hasErr
}

// Clear resets the conversation, progress and request status.
func (s *Store) Clear() {
	s.update(func() {
		s.messages = nil
		s.loading = false
		s.err = ""
		s.hasErr = false
		s.topic = emptyTopicProgress()
	})
}

// SetCurrentTopic makes topicID the active topic and seeds any missing
// subtopic entries. Existing entries keep their completion flags.
// Unknown topics are ignored and false is returned.
func (s *Store) SetCurrentTopic(topicID string) bool {
	topic, ok := s.catalog.Topic(topicID)
	if !ok {
		return false
	}
	s.update(func() { s.setCurrentTopicLocked(topic) })
	return true
}

func (s *Store) setCurrentTopicLocked(topic curriculum.Topic) {
	existing := s.topic.Subtopics[topic.ID]
	for _, name := range topic.Subtopics {
		if !slices.ContainsFunc(existing, func(sp SubtopicProgress) bool { return sp.Name == name }) {
			existing = append(existing, SubtopicProgress{Name: name})
		}
	}
	if existing == nil {
		existing = []SubtopicProgress{}
	}
	s.topic.Subtopics[topic.ID] = existing
	s.topic.CurrentTopicID = topic.ID
	s.topic.Understanding = Learning
}

// FocusTopic selects a topic and records the opening exchange for it: a
// system instruction listing the subtopics and the tutor's greeting.
func (s *Store) FocusTopic(topicID string) bool {
	topic, ok := s.catalog.Topic(topicID)
	if !ok {
		return false
	}
	s.update(func() {
		s.setCurrentTopicLocked(topic)
		s.messages = append(s.messages,
			Message{Role: RoleSystem, Content: curriculum.FocusMessage(topic), ID: uuid.NewString()},
			Message{Role: RoleAssistant, Content: curriculum.GreetingMessage(topic), ID: uuid.NewString()},
		)
	})
	return true
}

// UpdateSubtopic sets the completion flag of one subtopic and recomputes
// whether its topic is complete. Topics that were never made current are
// left untouched.
func (s *Store) UpdateSubtopic(topicID, name string, completed bool) {
	s.update(func() {
		subs, ok := s.topic.Subtopics[topicID]
		if !ok {
			return
		}
		for i := range subs {
			if subs[i].Name == name {
				subs[i].Completed = completed
			}
		}
		s.recomputeCompletedLocked(topicID)
	})
}

func (s *Store) recomputeCompletedLocked(topicID string) {
	subs := s.topic.Subtopics[topicID]
	done := len(subs) > 0
	for _, sp := range subs {
		if !sp.Completed {
			done = false
			break
		}
	}

	idx := slices.Index(s.topic.CompletedTopics, topicID)
	switch {
	case done && idx < 0:
		s.topic.CompletedTopics = append(s.topic.CompletedTopics, topicID)
	case !done && idx >= 0:
		s.topic.CompletedTopics = slices.Delete(s.topic.CompletedTopics, idx, idx+1)
	}
}

// SetUnderstanding sets the learner's stage for the current topic.
func (s *Store) SetUnderstanding(u Understanding) error {
	if !u.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownUnderstanding, u)
	}
	s.update(func() { s.topic.Understanding = u })
	return nil
}

// IsTopicCompleted reports whether topicID is in the completed set.
func (s *Store) IsTopicCompleted(topicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.topic.CompletedTopics, topicID)
}

// CurrentTopic returns the active topic, if any.
func (s *Store) CurrentTopic() (curriculum.Topic, bool) {
	s.mu.Lock()
	id := s.topic.CurrentTopicID
	s.mu.Unlock()
	if id == "" {
		return curriculum.Topic{}, false
	}
	return s.catalog.Topic(id)
}

// MoveToNextTopic advances to the topic after the current one in catalog
// order and returns its ID. It returns false when there is no current
// topic or the current topic is the last one.
func (s *Store) MoveToNextTopic() (string, bool) {
	s.mu.Lock()
	current := s.topic.CurrentTopicID
	s.mu.Unlock()

	if current == "" {
		return "", false
	}
	next, ok := s.catalog.Next(current)
	if !ok {
		return "", false
	}
	s.update(func() { s.setCurrentTopicLocked(next) })
	return next.ID, true
}

// Progress derives completion percentages from tracked subtopics.
func (s *Store) Progress() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum Summary
	for _, subs := range s.topic.Subtopics {
		for _, sp := range subs {
			sum.TotalSubtopics++
			if sp.Completed {
				sum.CompletedSubtopics++
			}
		}
	}
	sum.OverallPercent = percent(sum.CompletedSubtopics, sum.TotalSubtopics)

	if id := s.topic.CurrentTopicID; id != "" {
		subs := s.topic.Subtopics[id]
		done := 0
		for _, sp := range subs {
			if sp.Completed {
				done++
			}
		}
		sum.TopicPercent = percent(done, len(subs))
	}
	return sum
}

// SectionProgress counts completed topics per catalog section.
func (s *Store) SectionProgress() []SectionCount {
	s.mu.Lock()
	completed := slices.Clone(s.topic.CompletedTopics)
	s.mu.Unlock()

	var out []SectionCount
	for _, sec := range s.catalog.Sections() {
		sc := SectionCount{Key: sec.Key, Title: sec.Title, Total: len(sec.Topics)}
		for _, t := range sec.Topics {
			if slices.Contains(completed, t.ID) {
				sc.Completed++
			}
		}
		out = append(out, sc)
	}
	return out
}

// Snapshot returns a deep copy of the store's state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := make(map[string][]SubtopicProgress, len(s.topic.Subtopics))
	for k, v := range maps.All(s.topic.Subtopics) {
		subs[k] = slices.Clone(v)
	}
	return State{
		Messages: slices.Clone(s.messages),
		Loading:  s.loading,
		Error:    s.err,
		HasError: s.hasErr,
		Topic: TopicProgress{
			CurrentTopicID:  s.topic.CurrentTopicID,
			CompletedTopics: slices.Clone(s.topic.CompletedTopics),
			Subtopics:       subs,
			Understanding:   s.topic.Understanding,
		},
	}
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}
