package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionState(t *testing.T) {
	now := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	s := NewSessionState("visitor-1", "de", "euroshop_2026_qr", now)

	assert.Equal(t, "visitor-1", s.SessionID)
	assert.Equal(t, StageGreeting, s.Stage)
	assert.Equal(t, ConsentUnasked, s.Consent)
	assert.NotNil(t, s.ClientsShown)
	assert.False(t, s.LeadCaptured)
	assert.Equal(t, now, s.StartedAt)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewSessionState("v", "en", "qr", time.Now())
	s.ClientsShown["core"] = true
	s.AddIntent(2, "product_presented")

	c := s.Clone()
	s.ClientsShown["dfki"] = true
	s.AddIntent(1, "challenge_vague")
	s.Partial.Email = "late@example.com"

	assert.Len(t, c.ClientsShown, 1)
	assert.Equal(t, []string{"product_presented"}, c.IntentSignals)
	assert.Equal(t, 2, c.IntentScore)
	assert.Empty(t, c.Partial.Email)
}

func TestCloneNilMap(t *testing.T) {
	s := &SessionState{}
	c := s.Clone()
	assert.NotNil(t, c.ClientsShown)
}

func TestAddIntent(t *testing.T) {
	s := &SessionState{}
	s.AddIntent(2, "a")
	s.AddIntent(3, "")
	assert.Equal(t, 5, s.IntentScore)
	assert.Equal(t, []string{"a"}, s.IntentSignals)
}

func TestEmailAccessors(t *testing.T) {
	s := &SessionState{Partial: Contact{Email: "p@example.com"}}
	assert.Equal(t, "p@example.com", s.AnyEmail())
	assert.Equal(t, "p@example.com", s.EffectiveContact().Email)

	s.Contact = Contact{Email: "f@example.com"}
	s.LeadCaptured = true
	assert.Equal(t, "f@example.com", s.AnyEmail())
	assert.Equal(t, "f@example.com", s.EffectiveContact().Email)
}

func TestConsentString(t *testing.T) {
	assert.Equal(t, "Yes", ConsentGiven.String())
	assert.Equal(t, "No", ConsentDeclined.String())
	assert.Equal(t, "Not asked", ConsentUnasked.String())
}

func TestIntentLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "LOW"}, {1, "LOW"}, {2, "MEDIUM"}, {3, "MEDIUM"}, {4, "HIGH"}, {7, "HIGH"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntentLevel(tt.score), "score %d", tt.score)
	}
}

func TestContactIsZero(t *testing.T) {
	assert.True(t, Contact{}.IsZero())
	assert.False(t, Contact{Phone: "1"}.IsZero())
}

func TestTranscriptIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		tr   Transcript
		want bool
	}{
		{"nil", nil, true},
		{"greeting only", Transcript{{Role: RoleAgent, Text: "Hallo!"}}, true},
		{"blank visitor", Transcript{{Role: RoleVisitor, Text: "   "}}, true},
		{"visitor spoke", Transcript{{Role: RoleAgent, Text: "Hi"}, {Role: RoleVisitor, Text: "hello"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tr.IsEmpty())
		})
	}
}

func TestVisitorTexts(t *testing.T) {
	tr := Transcript{
		{Role: RoleAgent, Text: "Hi"},
		{Role: RoleVisitor, Text: "one"},
		{Role: RoleVisitor, Text: ""},
		{Role: RoleAgent, Text: "ok"},
		{Role: RoleVisitor, Text: "two"},
	}
	assert.Equal(t, []string{"one", "two"}, tr.VisitorTexts())
}

func TestNewLeadJSONShape(t *testing.T) {
	s := NewSessionState("v", "en", "euroshop_2026_qr", time.Now())
	s.Contact = Contact{Name: "Anna", Email: "anna@example.com", Company: "Acme"}
	s.BiggestChallenge = "lead quality"
	s.ConversationSummary = "Interested"
	s.AddIntent(2, "product_presented")

	lead := NewLead(s.Clone(), time.Date(2026, 2, 24, 9, 30, 0, 0, time.UTC))
	data, err := json.Marshal(lead)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"captured_at", "contact", "intent", "visitor", "qualification", "campaign_source", "conversation_summary"} {
		assert.Contains(t, raw, key)
	}
	contact := raw["contact"].(map[string]any)
	assert.Equal(t, "anna@example.com", contact["email"])
	assert.Contains(t, contact, "role_title")
	assert.Equal(t, "lead quality", raw["qualification"].(map[string]any)["biggest_challenge"])
}

func TestNewLeadEmptySignals(t *testing.T) {
	lead := NewLead(SessionState{}, time.Now())
	assert.NotNil(t, lead.Intent.Signals)
}
