// Package model provides domain types shared across packages.
package model

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in the conversation history.
// Messages are immutable once appended to the context store.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ToolCall is a parsed tool invocation extracted from model output.
// Arguments are positional, whitespace-trimmed and quote-stripped.
type ToolCall struct {
	Name      string   `json:"name"`
	Arguments []string `json:"arguments"`
}

// Arg returns the argument at index i, or the empty string when absent.
func (c ToolCall) Arg(i int) string {
	if i < 0 || i >= len(c.Arguments) {
		return ""
	}
	return c.Arguments[i]
}
