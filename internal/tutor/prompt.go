package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/progress"
)

// StudentPrefix marks learner turns so the model can tell them apart from
// quoted code or instructions.
const StudentPrefix = "[Student Message]: "

const baseTeachingPrompt = `You are a friendly and patient Python programming teacher. Your goal is to guide students through learning Object-Oriented Programming in Python.

Teaching Style Guidelines:
1. Keep the Conversation Flowing
- Always acknowledge student responses positively
- Build on previous concepts
- Ask focused questions to guide learning
- Keep responses concise (2-3 paragraphs maximum)

2. Structured Teaching Approach
- Start with fundamentals before complex concepts
- Use real-world analogies
- Provide concrete, runnable code examples
- Check understanding with simple questions
- When student answers correctly, provide positive reinforcement and build on their understanding
- When student shows confusion, gently correct and explain differently

3. Code Examples
- Start with very basic examples
- Include clear comments
- Show output of code
- Encourage experimentation

4. Assessment
- Ask one clear question at a time
- Wait for student response before moving on
- Provide immediate, constructive feedback
- If student understands, offer to move to next concept
- If student is confused, try a different explanation approach`

// BuildTeachingPrompt composes the system prompt. Without a topic only the
// general teaching guidelines are returned.
func BuildTeachingPrompt(topic *curriculum.Topic, understanding string, subtopics []progress.SubtopicProgress) string {
	if topic == nil {
		return baseTeachingPrompt
	}

	all := make([]string, 0, len(subtopics))
	var done []string
	for _, st := range subtopics {
		all = append(all, st.Name)
		if st.Completed {
			done = append(done, st.Name)
		}
	}

	var b strings.Builder
	b.WriteString(baseTeachingPrompt)
	fmt.Fprintf(&b, "\n\nCurrent Topic: %s", topic.Title)
	fmt.Fprintf(&b, "\nLearning Stage: %s", understanding)
	fmt.Fprintf(&b, "\nSubtopics to Cover: %s", strings.Join(all, ", "))
	fmt.Fprintf(&b, "\nCompleted Subtopics: %s", strings.Join(done, ", "))
	return b.String()
}

// buildSummaryPrompt asks for a one or two sentence recap of a reply.
func buildSummaryPrompt(content string) string {
	return "Please provide a very concise summary (1-2 sentences) of the following teaching response, focusing on the main concepts discussed: " +
		content +
		"\nKeep your summary brief and focused on the key points."
}
