package domain

// EventType names an inbound event from the voice runtime.
type EventType string

const (
	EventParticipantJoined EventType = "participant_joined"
	EventAttributesChanged EventType = "attributes_changed"
	EventVisitorSaid       EventType = "visitor_said"
	EventAgentSaid         EventType = "agent_said"
	EventSessionFailed     EventType = "session_failed"
	EventShutdown          EventType = "shutdown"
)

// Participant attribute keys.
const (
	AttrLanguage       = "user.language"
	AttrCampaignSource = "campaign_source"
)

// Event is an inbound runtime event addressed to one participant.
type Event struct {
	Type        EventType         `json:"type"`
	Participant string            `json:"participant"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Text        string            `json:"text,omitempty"`
}
