package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

var fixedTime = time.Date(2026, 2, 24, 11, 22, 33, 0, time.UTC)

func sampleTranscript() domain.Transcript {
	return domain.Transcript{
		{Role: domain.RoleAgent, Text: "Hello! Welcome to our booth."},
		{Role: domain.RoleVisitor, Text: "Hi, I'm a marketing director."},
		{Role: domain.RoleVisitor, Text: "  "},
		{Role: domain.RoleAgent, Text: "Great to meet you."},
	}
}

func sampleState() domain.SessionState {
	s := domain.NewSessionState("visitor-1", "en", "euroshop_2026_qr", fixedTime)
	s.VisitorRole = "Marketing Director"
	s.AddIntent(2, "product_presented")
	return s.Clone()
}

func TestRenderDocument(t *testing.T) {
	s := sampleState()
	s.ConversationSummary = "Interested in lead qualification."
	out := Render(sampleTranscript(), s, fixedTime)

	want := strings.Join([]string{
		heavy,
		"  ENGAGEIQ CONVERSATION TRANSCRIPT",
		"  Date: 2026-02-24 11:22:33",
		heavy,
		"",
		"Intent Score: 2 (MEDIUM)",
		"Signals: product_presented",
		"",
		light,
		"TRANSCRIPT",
		light,
		"",
		"Agent:   Hello! Welcome to our booth.",
		"Visitor: Hi, I'm a marketing director.",
		"Agent:   Great to meet you.",
		"",
		light,
		"QUALIFICATION",
		light,
		"",
		"Biggest Challenge: —",
		"Visitor Role:      Marketing Director",
		"",
		light,
		"METADATA",
		light,
		"",
		"Language:        en",
		"Campaign Source: euroshop_2026_qr",
		"Lead Captured:   No",
		"",
		light,
		"AI CONVERSATION SUMMARY",
		light,
		"",
		"Interested in lead qualification.",
		"",
		heavy,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRenderIsDeterministic(t *testing.T) {
	s := sampleState()
	assert.Equal(t, Render(sampleTranscript(), s, fixedTime), Render(sampleTranscript(), s, fixedTime))
}

func TestRenderFinalizedContact(t *testing.T) {
	s := sampleState()
	s.Partial = domain.Contact{Name: "Jane", Email: "jane@acme.com"}
	s.Contact = domain.Contact{Name: "Jane", Email: "jane@acme.com"}
	s.Consent = domain.ConsentGiven
	s.LeadCaptured = true

	out := Render(sampleTranscript(), s, fixedTime)
	assert.Contains(t, out, "CONTACT INFORMATION (FINALIZED)")
	assert.NotContains(t, out, "PARTIAL CONTACT INFO")
	assert.Contains(t, out, "Email:   jane@acme.com")
	assert.Contains(t, out, "Phone:   —")
	assert.Contains(t, out, "Consent: Yes")
	assert.Contains(t, out, "Lead Captured:   Yes")
}

func TestRenderPartialContact(t *testing.T) {
	s := sampleState()
	s.Partial = domain.Contact{Name: "Jane", Email: "jane@acme.com", Company: "Acme"}

	out := Render(sampleTranscript(), s, fixedTime)
	assert.Contains(t, out, "PARTIAL CONTACT INFO (NO CONSENT)")
	assert.NotContains(t, out, "FINALIZED")
	assert.Contains(t, out, "Company: Acme")
	assert.Contains(t, out, "Status:  Session ended before consent was given")
}

func TestRenderNoContactNoQualification(t *testing.T) {
	s := domain.NewSessionState("v", "de", "", fixedTime).Clone()
	out := Render(sampleTranscript(), s, fixedTime)
	assert.NotContains(t, out, "CONTACT")
	assert.NotContains(t, out, "QUALIFICATION")
	assert.Contains(t, out, "Campaign Source: —")
	assert.Contains(t, out, "Intent Score: 0 (LOW)")
	assert.NotContains(t, out, "Signals:")
}

func TestArchiveWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	a := NewArchiver(dir, silentLog())
	a.now = func() time.Time { return fixedTime }

	path := a.Archive(sampleTranscript(), sampleState())
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "conversation_20260224_112233_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Render(sampleTranscript(), sampleState(), fixedTime), string(data))
}

func TestArchiveSkipsEmptyTranscript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "history")
	a := NewArchiver(dir, silentLog())

	greetingOnly := domain.Transcript{{Role: domain.RoleAgent, Text: "Hallo!"}}
	assert.Empty(t, a.Archive(greetingOnly, sampleState()))
	assert.Empty(t, a.Archive(nil, sampleState()))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestArchiveFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "history")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	a := NewArchiver(blocker, silentLog())
	assert.Empty(t, a.Archive(sampleTranscript(), sampleState()))
}
