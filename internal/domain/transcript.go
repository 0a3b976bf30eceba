package domain

import (
	"strings"
	"time"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleAgent   Role = "agent"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Transcript is the ordered list of turns of one conversation.
type Transcript []Turn

// IsEmpty reports whether the visitor never said anything. An agent
// greeting on its own does not count as a conversation.
func (t Transcript) IsEmpty() bool {
	for _, turn := range t {
		if turn.Role == RoleVisitor && strings.TrimSpace(turn.Text) != "" {
			return false
		}
	}
	return true
}

// VisitorTexts returns the text of every visitor turn in order.
func (t Transcript) VisitorTexts() []string {
	var out []string
	for _, turn := range t {
		if turn.Role == RoleVisitor && strings.TrimSpace(turn.Text) != "" {
			out = append(out, turn.Text)
		}
	}
	return out
}
