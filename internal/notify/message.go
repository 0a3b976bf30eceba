package notify

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/soyeahso/boothbot/internal/domain"
)

const notProvided = "Not provided"

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Subject returns the lead notification subject line. Visitor-supplied
// fields are folded onto one line so they cannot start a new header.
func Subject(lead domain.Lead) string {
	return fmt.Sprintf("EuroShop Lead: %s from %s - Intent %d/5",
		headerSafe(or(lead.Contact.Name, "Unknown")), headerSafe(or(lead.Contact.Company, "Unknown")), lead.Intent.Score)
}

// headerSafe replaces line breaks and other control characters with spaces.
func headerSafe(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n' || unicode.IsControl(r)
	}), " ")
}

// Body renders the plain-text lead notification.
func Body(lead domain.Lead) string {
	c := lead.Contact
	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	w(rule)
	w("  EUROSHOP LEAD NOTIFICATION")
	w(rule)
	w("")
	w("CONTACT INFORMATION")
	w("  Name:       %s", or(c.Name, notProvided))
	w("  Company:    %s", or(c.Company, notProvided))
	w("  Role:       %s", or(c.RoleTitle, notProvided))
	w("  Email:      %s", or(c.Email, notProvided))
	w("  Phone:      %s", or(c.Phone, notProvided))
	w("")
	w("INTENT")
	w("  Score:      %d/5 (%s)", lead.Intent.Score, domain.IntentLevel(lead.Intent.Score))
	w("  Source:     %s", or(lead.CampaignSource, notProvided))
	w("")
	w("QUALIFICATION")
	w("  Challenge:  %s", or(lead.Qualification.BiggestChallenge, notProvided))
	w("")
	w("CONVERSATION SUMMARY")
	w("%s", or(lead.ConversationSummary, "No summary available."))
	w("")
	b.WriteString(rule)
	return b.String()
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
