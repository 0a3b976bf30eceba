package domain

import (
	"maps"
	"slices"
	"time"
)

// Stage is the conversation phase of a session.
type Stage string

const (
	StageGreeting        Stage = "greeting"
	StageExploring       Stage = "exploring"
	StageAwaitingConsent Stage = "awaiting_consent"
	StageClosed          Stage = "closed"
)

// Consent is the visitor's answer to the follow-up question.
type Consent int

const (
	ConsentUnasked Consent = iota
	ConsentGiven
	ConsentDeclined
)

// String renders consent the way it appears in transcripts.
func (c Consent) String() string {
	switch c {
	case ConsentGiven:
		return "Yes"
	case ConsentDeclined:
		return "No"
	default:
		return "Not asked"
	}
}

// Contact holds visitor contact details. The same shape is used for the
// partial details collected before consent and the finalized record.
type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	RoleTitle string `json:"role_title"`
	Phone     string `json:"phone"`
}

// IsZero reports whether no field is set.
func (c Contact) IsZero() bool {
	return c == Contact{}
}

// SessionState is the mutable record of one visitor conversation. It is
// owned by a single controller; delivery sinks only ever see a Clone.
type SessionState struct {
	SessionID      string
	StartedAt      time.Time
	Language       string
	CampaignSource string
	Stage          Stage

	VisitorRole          string
	ProductPresented     bool
	ClientsShown         map[string]bool
	QualificationStarted bool
	BiggestChallenge     string

	IntentScore   int
	IntentSignals []string

	Partial      Contact
	Contact      Contact
	Consent      Consent
	LeadCaptured bool

	ConversationSummary string
	HistorySaved        bool
}

// NewSessionState returns the initial state for a fresh conversation.
func NewSessionState(sessionID, language, campaignSource string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:      sessionID,
		StartedAt:      now,
		Language:       language,
		CampaignSource: campaignSource,
		Stage:          StageGreeting,
		ClientsShown:   map[string]bool{},
	}
}

// Clone returns a deep copy that shares no mutable data with s.
func (s *SessionState) Clone() SessionState {
	c := *s
	c.ClientsShown = maps.Clone(s.ClientsShown)
	if c.ClientsShown == nil {
		c.ClientsShown = map[string]bool{}
	}
	c.IntentSignals = slices.Clone(s.IntentSignals)
	return c
}

// AddIntent raises the intent score and records the signal.
func (s *SessionState) AddIntent(delta int, signal string) {
	s.IntentScore += delta
	if signal != "" {
		s.IntentSignals = append(s.IntentSignals, signal)
	}
}

// AnyEmail returns the finalized email, or the partial one when no
// consent was given yet.
func (s *SessionState) AnyEmail() string {
	if s.Contact.Email != "" {
		return s.Contact.Email
	}
	return s.Partial.Email
}

// EffectiveContact returns the finalized contact when a lead was captured
// and the partial contact otherwise.
func (s *SessionState) EffectiveContact() Contact {
	if s.LeadCaptured {
		return s.Contact
	}
	return s.Partial
}

// IntentLevel buckets an intent score into HIGH, MEDIUM or LOW.
func IntentLevel(score int) string {
	switch {
	case score >= 4:
		return "HIGH"
	case score >= 2:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
