// Package display carries visitor-facing payloads to the booth screen.
package display

import "context"

// Topics understood by the booth frontend.
const (
	TopicMessage  = "message"
	TopicProducts = "products"
	TopicTrigger  = "trigger"
	TopicClean    = "clean"
)

// Publisher sends a JSON payload on a topic to one participant's screen.
type Publisher interface {
	Publish(ctx context.Context, participant, topic string, payload any) error
}

// ProductCard is one tile on the products topic.
type ProductCard struct {
	ProductName string   `json:"product_name"`
	Image       []string `json:"image"`
	URL         string   `json:"url"`
}

// AgentResponse is the message topic payload.
type AgentResponse struct {
	AgentResponse string `json:"agent_response"`
}

// Buttons renders trigger buttons. The frontend shows each key as a
// button label and sends the value back when pressed.
func Buttons(labels ...string) map[string]string {
	m := make(map[string]string, len(labels))
	for _, l := range labels {
		m[l] = l
	}
	return m
}

// Clean is the payload that clears the screen.
func Clean() map[string]bool {
	return map[string]bool{"clean": true}
}
