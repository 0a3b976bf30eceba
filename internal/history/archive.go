// Package history renders conversation transcripts into human-readable
// text files.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/soyeahso/boothbot/internal/domain"
	"github.com/soyeahso/boothbot/internal/logging"
)

const (
	notSet  = "—"
	heavy   = "============================================================"
	light   = "------------------------------------------------------------"
	dateFmt = "2006-01-02 15:04:05"
)

// Archiver writes one transcript file per archived conversation.
type Archiver struct {
	dir string
	log *logging.Logger
	now func() time.Time
}

// NewArchiver creates an Archiver that writes into dir.
func NewArchiver(dir string, log *logging.Logger) *Archiver {
	return &Archiver{dir: dir, log: log.Sub("history"), now: time.Now}
}

// Archive renders the transcript with the session snapshot and writes it
// to a new file. It returns the file path, or "" when the transcript is
// empty or the write failed. Failures are logged, never returned.
func (a *Archiver) Archive(tr domain.Transcript, s domain.SessionState) string {
	if tr.IsEmpty() {
		a.log.Info().Str("session", s.SessionID).Msg("no conversation to save (empty session)")
		return ""
	}

	at := a.now()
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		a.log.Error().Err(err).Str("session", s.SessionID).Msg("failed to create history dir")
		return ""
	}

	name := fmt.Sprintf("conversation_%s_%s.txt", at.Format("20060102_150405"), strings.ToLower(ulid.Make().String()))
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, []byte(Render(tr, s, at)), 0o600); err != nil {
		a.log.Error().Err(err).Str("session", s.SessionID).Msg("failed to save conversation history")
		return ""
	}

	a.log.Info().Str("session", s.SessionID).Str("path", path).Msg("conversation saved")
	return path
}

// Render produces the transcript document. Output depends only on its
// arguments.
func Render(tr domain.Transcript, s domain.SessionState, at time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	section := func(title string) {
		line("")
		line(light)
		line(title)
		line(light)
		line("")
	}

	line(heavy)
	line("  ENGAGEIQ CONVERSATION TRANSCRIPT")
	line("  Date: %s", at.Format(dateFmt))
	line(heavy)
	line("")

	line("Intent Score: %d (%s)", s.IntentScore, domain.IntentLevel(s.IntentScore))
	if len(s.IntentSignals) > 0 {
		line("Signals: %s", strings.Join(s.IntentSignals, ", "))
	}

	section("TRANSCRIPT")
	for _, turn := range tr {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		if turn.Role == domain.RoleVisitor {
			line("Visitor: %s", text)
		} else {
			line("Agent:   %s", text)
		}
	}

	switch {
	case !s.Contact.IsZero():
		section("CONTACT INFORMATION (FINALIZED)")
		writeContact(line, s.Contact)
		line("Consent: %s", s.Consent)
	case !s.Partial.IsZero():
		section("PARTIAL CONTACT INFO (NO CONSENT)")
		writeContact(line, s.Partial)
		line("Status:  Session ended before consent was given")
	}

	if s.BiggestChallenge != "" || s.VisitorRole != "" {
		section("QUALIFICATION")
		line("Biggest Challenge: %s", orNotSet(s.BiggestChallenge))
		line("Visitor Role:      %s", orNotSet(s.VisitorRole))
	}

	section("METADATA")
	line("Language:        %s", s.Language)
	line("Campaign Source: %s", orNotSet(s.CampaignSource))
	line("Lead Captured:   %s", yesNo(s.LeadCaptured))

	if s.ConversationSummary != "" {
		section("AI CONVERSATION SUMMARY")
		line("%s", s.ConversationSummary)
	}

	line("")
	b.WriteString(heavy)
	return b.String()
}

func writeContact(line func(string, ...any), c domain.Contact) {
	line("Name:    %s", orNotSet(c.Name))
	line("Email:   %s", orNotSet(c.Email))
	line("Phone:   %s", orNotSet(c.Phone))
	line("Company: %s", orNotSet(c.Company))
	line("Role:    %s", orNotSet(c.RoleTitle))
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
