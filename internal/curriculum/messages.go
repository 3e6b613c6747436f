package curriculum

import (
	"fmt"
	"strings"
)

// MaxMessages is the advisory conversation length for a single session.
const MaxMessages = 20

// Fixed tutor messages.
const (
	WelcomeMessage        = "Welcome to the Python OOP Tutorial! We'll start with the basics and progressively move to more advanced concepts. What would you like to learn about first?"
	TopicCompletedMessage = "Great job! You've completed this topic. Would you like to move on to the next one?"
)

// FocusMessage is the system message recorded when a learner picks a topic.
func FocusMessage(t Topic) string {
	return fmt.Sprintf("Let's focus on %s. Cover these subtopics: %s", t.Title, strings.Join(t.Subtopics, ", "))
}

// GreetingMessage is the assistant's opening line for a freshly picked topic.
func GreetingMessage(t Topic) string {
	return fmt.Sprintf("Let's explore %s. I'll guide you through the key concepts and provide practical examples. What specific aspect of %s would you like to understand first?", t.Title, t.Title)
}
