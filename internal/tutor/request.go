package tutor

import (
	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/llm"
	"github.com/abhisek/pytutor/internal/progress"
)

// ChatRequest is the body of a chat completion request.
type ChatRequest struct {
	Messages      []progress.Message          `json:"messages"`
	CurrentTopic  *curriculum.Topic           `json:"currentTopic"`
	Understanding string                      `json:"understanding"`
	Subtopics     []progress.SubtopicProgress `json:"subtopics"`
}

// llmMessages converts the conversation for the provider, prefixing
// learner turns with StudentPrefix.
func (r ChatRequest) llmMessages() []llm.Message {
	out := make([]llm.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		switch m.Role {
		case progress.RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: StudentPrefix + m.Content})
		case progress.RoleAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		case progress.RoleSystem:
			out = append(out, llm.Message{Role: llm.RoleSystem, Content: m.Content})
		}
	}
	return out
}
