package progress

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the conversation. Identity is the ID field.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id"`
}

// Understanding is the learner's coarse stage for the current topic.
type Understanding string

const (
	NotStarted Understanding = "not_started"
	Learning   Understanding = "learning"
	Practicing Understanding = "practicing"
	Completed  Understanding = "completed"
)

// Valid reports whether u is one of the known stages.
func (u Understanding) Valid() bool {
	switch u {
	case NotStarted, Learning, Practicing, Completed:
		return true
	}
	return false
}

// SubtopicProgress tracks one subtopic of one topic.
type SubtopicProgress struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// TopicProgress is the learner's position in the curriculum.
type TopicProgress struct {
	CurrentTopicID  string                        `json:"currentTopicId,omitempty"`
	CompletedTopics []string                      `json:"completedTopics"`
	Subtopics       map[string][]SubtopicProgress `json:"subtopicProgress"`
	Understanding   Understanding                 `json:"understanding"`
}

// State is a point-in-time copy of everything the Store holds.
type State struct {
	Messages []Message
	Loading  bool
	Error    string
	HasError bool
	Topic    TopicProgress
}

// Summary holds derived progress numbers. Percentages are in [0, 100].
type Summary struct {
	TopicPercent       float64
	OverallPercent     float64
	CompletedSubtopics int
	TotalSubtopics     int
}

// SectionCount is the number of completed topics within one catalog section.
type SectionCount struct {
	Key       string
	Title     string
	Completed int
	Total     int
}
