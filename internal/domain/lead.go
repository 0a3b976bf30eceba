package domain

import "time"

// Lead is the persisted record of a consented lead.
type Lead struct {
	CapturedAt          time.Time         `json:"captured_at"`
	Contact             Contact           `json:"contact"`
	Intent              LeadIntent        `json:"intent"`
	Visitor             LeadVisitor       `json:"visitor"`
	Qualification       LeadQualification `json:"qualification"`
	CampaignSource      string            `json:"campaign_source"`
	ConversationSummary string            `json:"conversation_summary"`
}

// LeadIntent is the intent block of a lead.
type LeadIntent struct {
	Score   int      `json:"score"`
	Signals []string `json:"signals"`
}

// LeadVisitor is the visitor block of a lead.
type LeadVisitor struct {
	Language string `json:"language"`
}

// LeadQualification is the qualification block of a lead.
type LeadQualification struct {
	BiggestChallenge string `json:"biggest_challenge"`
}

// NewLead builds a lead record from a session snapshot.
func NewLead(s SessionState, capturedAt time.Time) Lead {
	signals := s.IntentSignals
	if signals == nil {
		signals = []string{}
	}
	return Lead{
		CapturedAt:          capturedAt,
		Contact:             s.Contact,
		Intent:              LeadIntent{Score: s.IntentScore, Signals: signals},
		Visitor:             LeadVisitor{Language: s.Language},
		Qualification:       LeadQualification{BiggestChallenge: s.BiggestChallenge},
		CampaignSource:      s.CampaignSource,
		ConversationSummary: s.ConversationSummary,
	}
}
