package kiosk

import (
	"strings"
	"unicode"
)

// Client is a reference customer shown on the booth screen.
type Client struct {
	Key    string
	Name   string
	URL    string
	Images []string
}

// Product is the product presented at the booth.
type Product struct {
	Name     string
	Subtitle string
	URL      string
	Images   []string
	Clients  []Client
}

// Catalog is the product the kiosk presents.
var Catalog = Product{
	Name:     "EngageIQ",
	Subtitle: "Conversational Demand Interface",
	Clients: []Client{
		{
			Key:    "core",
			Name:   "CORE",
			URL:    "https://vimeo.com/1165136133/9930020d47?share=copy&fl=sv&fe=ci",
			Images: []string{"https://image.ayand.cloud/euro/core.png"},
		},
		{
			Key:    "dfki",
			Name:   "DFKI",
			URL:    "https://vimeo.com/1165136145/062503170c?share=copy&fl=sv&fe=ci",
			Images: []string{"https://image.ayand.cloud/euro/dfki.png"},
		},
	},
}

// FindClient matches key against client names, case-insensitively and by
// substring.
func (p Product) FindClient(key string) (Client, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return Client{}, false
	}
	for _, c := range p.Clients {
		if strings.Contains(strings.ToLower(c.Name), key) {
			return c, true
		}
	}
	return Client{}, false
}

// ClientNames lists client names for instructions.
func (p Product) ClientNames() string {
	names := make([]string, len(p.Clients))
	for i, c := range p.Clients {
		names[i] = c.Name
	}
	return strings.Join(names, " and ")
}

// RoleHook is a role-specific value statement used when presenting.
type RoleHook struct {
	Key              string
	Keywords         []string
	ValueHook        string
	ChallengeExample string
}

// roleHooks are checked in order; the first whole-word keyword hit wins.
var roleHooks = []RoleHook{
	{
		Key:              "marketing",
		Keywords:         []string{"marketing", "cmo", "brand", "campaign", "demand generation", "growth"},
		ValueHook:        "Know exactly which campaigns drive real demand, not just clicks. EngageIQ shows you the intent behind every visitor interaction.",
		ChallengeExample: "Which of your marketing channels actually generates qualified demand, not just traffic?",
	},
	{
		Key:              "sales",
		Keywords:         []string{"sales", "account executive", "business development", "revenue"},
		ValueHook:        "Your best leads are the ones you never see. EngageIQ surfaces hidden demand so your team follows up with visitors who are actually interested.",
		ChallengeExample: "How many potential customers leave your website without your sales team ever knowing they were there?",
	},
	{
		Key:              "executive",
		Keywords:         []string{"ceo", "cto", "coo", "cfo", "founder", "owner", "managing director", "geschaeftsfuehrer"},
		ValueHook:        "Turn invisible demand into measurable pipeline. EngageIQ gives you visibility into what your visitors actually want, around the clock.",
		ChallengeExample: "How much demand are you missing because you can't see who's actually interested?",
	},
	{
		Key:              "operations",
		Keywords:         []string{"operations", "customer experience", "cx", "customer success", "service", "support"},
		ValueHook:        "Every visitor interaction contains a signal. EngageIQ captures those signals so your team knows exactly what customers need.",
		ChallengeExample: "Do you know what your visitors are actually looking for before they reach out?",
	},
	{
		Key:              "digital",
		Keywords:         []string{"e-commerce", "ecommerce", "digital", "online", "web", "it director"},
		ValueHook:        "Your website works 24/7. Now it can qualify demand too. EngageIQ captures intent around the clock.",
		ChallengeExample: "What happens to demand outside business hours? Are you capturing those conversations?",
	},
}

var defaultRoleHook = RoleHook{
	Key:              "default",
	ValueHook:        "EngageIQ makes invisible customer demand visible. Through natural AI conversation, it captures visitor intent and delivers structured data to your team.",
	ChallengeExample: "What's your biggest challenge with understanding your customer demand?",
}

// HookFor picks the role hook for a visitor role.
func HookFor(role string) RoleHook {
	role = strings.ToLower(role)
	if strings.TrimSpace(role) == "" {
		return defaultRoleHook
	}
	for _, h := range roleHooks {
		for _, kw := range h.Keywords {
			if containsWord(role, kw) {
				return h
			}
		}
	}
	return defaultRoleHook
}

// containsWord reports whether phrase occurs in s delimited by non-letters.
func containsWord(s, phrase string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(phrase)
		if !letterAt(s, start-1) && !letterAt(s, end) {
			return true
		}
		from = start + 1
	}
}

func letterAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	return unicode.IsLetter(rune(s[i]))
}
