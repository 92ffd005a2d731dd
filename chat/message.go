// Package chat runs the widget's assistant conversation.
package chat

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	Greeting        = "Hello! How can I help you today?"
	FallbackMessage = "Sorry, I encountered an error. Please try again."
)

// Message is one entry of the conversation. Synthetic messages (the
// greeting and error fallbacks) are shown to the user but never sent to
// the model.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

func newMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}
