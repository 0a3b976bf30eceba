package webhook

import (
	"strings"
	"time"

	"github.com/soyeahso/boothbot/internal/domain"
)

// Lead statuses reported to the CRM.
const (
	StatusHot       = "hot_lead"
	StatusDeclined  = "declined"
	StatusWarm      = "warm_lead"
	StatusNoContact = "no_contact"
)

// Payload is the request body accepted by the ingest endpoint.
type Payload struct {
	APIKey      string    `json:"apiKey"`
	CompanyName string    `json:"companyName"`
	Sessions    []Session `json:"sessions"`
}

// Session is one conversation inside a Payload.
type Session struct {
	SessionID       string      `json:"sessionId"`
	Date            string      `json:"date"`
	DurationSeconds int         `json:"durationSeconds"`
	Transcript      []Message   `json:"transcript"`
	ContactInfo     ContactInfo `json:"contactInfo"`
}

// Message is one transcript turn in CRM role vocabulary.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContactInfo summarizes the lead. Unknown fields are omitted.
type ContactInfo struct {
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Reachability      string `json:"reachability,omitempty"`
	PotentialScore    int    `json:"potentialScore"`
	ConversationBrief string `json:"conversationBrief,omitempty"`
	NextStep          string `json:"nextStep"`
	Status            string `json:"status"`
}

// Status derives the lead status from a session snapshot.
func Status(s domain.SessionState, warmThreshold int) string {
	switch {
	case s.LeadCaptured && s.Consent == domain.ConsentGiven:
		return StatusHot
	case s.Consent == domain.ConsentDeclined:
		return StatusDeclined
	case s.AnyEmail() != "" || s.IntentScore >= warmThreshold:
		return StatusWarm
	default:
		return StatusNoContact
	}
}

// NextStep describes what happens next for the lead.
func NextStep(s domain.SessionState) string {
	switch {
	case s.LeadCaptured && s.Consent == domain.ConsentGiven:
		return "Team will follow up via email"
	case s.Consent == domain.ConsentDeclined:
		return "No follow-up requested"
	case s.Partial.Email != "":
		return "Awaiting consent confirmation"
	default:
		return "No contact information collected"
	}
}

// Brief joins summary, role and challenge into one line.
func Brief(s domain.SessionState) string {
	var parts []string
	if s.ConversationSummary != "" {
		parts = append(parts, s.ConversationSummary)
	}
	if s.VisitorRole != "" {
		parts = append(parts, "Role: "+s.VisitorRole)
	}
	if s.BiggestChallenge != "" {
		parts = append(parts, "Challenge: "+s.BiggestChallenge)
	}
	return strings.Join(parts, " | ")
}

// PotentialScore scales the intent score onto 0-100.
func PotentialScore(score, scale int) int {
	return min(max(score*scale, 0), 100)
}

// CompanyName appends the booth location, e.g. "Ayand AI-C4".
func CompanyName(company, booth string) string {
	if booth == "" {
		return company
	}
	return company + "-" + booth
}

func buildSession(sessionID string, tr domain.Transcript, s domain.SessionState, now time.Time, warm, scale int) Session {
	msgs := make([]Message, 0, len(tr))
	for _, turn := range tr {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		role := "assistant"
		if turn.Role == domain.RoleVisitor {
			role = "user"
		}
		msgs = append(msgs, Message{Role: role, Content: text})
	}

	duration := 0
	if !s.StartedAt.IsZero() {
		duration = max(int(now.Sub(s.StartedAt).Seconds()), 0)
	}

	c := s.EffectiveContact()
	return Session{
		SessionID:       sessionID,
		Date:            now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationSeconds: duration,
		Transcript:      msgs,
		ContactInfo: ContactInfo{
			Name:              c.Name,
			Email:             c.Email,
			Phone:             c.Phone,
			Reachability:      c.Email,
			PotentialScore:    PotentialScore(s.IntentScore, scale),
			ConversationBrief: Brief(s),
			NextStep:          NextStep(s),
			Status:            Status(s, warm),
		},
	}
}
