package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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

var started = time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)

func transcript() domain.Transcript {
	return domain.Transcript{
		{Role: domain.RoleAgent, Text: "Hello!"},
		{Role: domain.RoleVisitor, Text: "Hi, I run marketing."},
	}
}

func newTestClient(url string) *Client {
	c := New(Config{
		URL:           url,
		APIKey:        "test-key",
		CompanyName:   "Ayand AI",
		BoothLocation: "C4",
		Timeout:       time.Second,
		Retries:       3,
		Backoff:       time.Millisecond,
		WarmThreshold: 3,
		ScoreScale:    20,
	}, silentLog())
	c.now = func() time.Time { return started.Add(95 * time.Second) }
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		state domain.SessionState
		want  string
	}{
		{"hot", domain.SessionState{LeadCaptured: true, Consent: domain.ConsentGiven, Contact: domain.Contact{Email: "a@b.com"}}, StatusHot},
		{"declined beats email", domain.SessionState{Consent: domain.ConsentDeclined, Partial: domain.Contact{Email: "a@b.com"}}, StatusDeclined},
		{"warm by partial email", domain.SessionState{Partial: domain.Contact{Email: "a@b.com"}}, StatusWarm},
		{"warm by score", domain.SessionState{IntentScore: 3}, StatusWarm},
		{"no contact", domain.SessionState{IntentScore: 2}, StatusNoContact},
		{"captured without consent is not hot", domain.SessionState{LeadCaptured: true, IntentScore: 1}, StatusNoContact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.state, 3))
		})
	}
}

func TestNextStep(t *testing.T) {
	assert.Equal(t, "Team will follow up via email",
		NextStep(domain.SessionState{LeadCaptured: true, Consent: domain.ConsentGiven}))
	assert.Equal(t, "No follow-up requested",
		NextStep(domain.SessionState{Consent: domain.ConsentDeclined}))
	assert.Equal(t, "Awaiting consent confirmation",
		NextStep(domain.SessionState{Partial: domain.Contact{Email: "a@b.com"}}))
	assert.Equal(t, "No contact information collected",
		NextStep(domain.SessionState{IntentScore: 5}))
}

func TestBrief(t *testing.T) {
	assert.Empty(t, Brief(domain.SessionState{}))
	assert.Equal(t, "Role: CEO", Brief(domain.SessionState{VisitorRole: "CEO"}))
	assert.Equal(t, "Keen | Role: CEO | Challenge: churn", Brief(domain.SessionState{
		ConversationSummary: "Keen", VisitorRole: "CEO", BiggestChallenge: "churn",
	}))
}

func TestPotentialScore(t *testing.T) {
	assert.Equal(t, 0, PotentialScore(0, 20))
	assert.Equal(t, 60, PotentialScore(3, 20))
	assert.Equal(t, 100, PotentialScore(5, 20))
	assert.Equal(t, 100, PotentialScore(7, 20))
}

func TestCompanyName(t *testing.T) {
	assert.Equal(t, "Ayand AI-A1", CompanyName("Ayand AI", "A1"))
	assert.Equal(t, "Ayand AI", CompanyName("Ayand AI", ""))
}

func TestSendSuccess(t *testing.T) {
	var got Payload
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := domain.NewSessionState("visitor-1", "en", "qr", started)
	s.Partial = domain.Contact{Name: "Jane", Email: "jane@acme.com"}
	s.VisitorRole = "Marketing Director"
	s.AddIntent(2, "product_presented")

	ok := newTestClient(srv.URL).Send(context.Background(), "visitor-1", transcript(), s.Clone())
	require.True(t, ok)
	assert.Equal(t, int32(1), hits.Load())

	assert.Equal(t, "test-key", got.APIKey)
	assert.Equal(t, "Ayand AI-C4", got.CompanyName)
	require.Len(t, got.Sessions, 1)
	sess := got.Sessions[0]
	assert.Equal(t, "visitor-1", sess.SessionID)
	assert.Equal(t, "2026-02-24T10:01:35.000Z", sess.Date)
	assert.Equal(t, 95, sess.DurationSeconds)
	assert.Equal(t, []Message{{Role: "assistant", Content: "Hello!"}, {Role: "user", Content: "Hi, I run marketing."}}, sess.Transcript)
	assert.Equal(t, ContactInfo{
		Name:              "Jane",
		Email:             "jane@acme.com",
		Reachability:      "jane@acme.com",
		PotentialScore:    40,
		ConversationBrief: "Role: Marketing Director",
		NextStep:          "Awaiting consent confirmation",
		Status:            StatusWarm,
	}, sess.ContactInfo)
}

func TestSendOmitsMissingFields(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	s := domain.NewSessionState("v", "de", "", started)
	require.True(t, newTestClient(srv.URL).Send(context.Background(), "v", transcript(), s.Clone()))

	info := raw["sessions"].([]any)[0].(map[string]any)["contactInfo"].(map[string]any)
	assert.NotContains(t, info, "name")
	assert.NotContains(t, info, "email")
	assert.NotContains(t, info, "phone")
	assert.NotContains(t, info, "conversationBrief")
	assert.Equal(t, "no_contact", info["status"])
	assert.EqualValues(t, 0, info["potentialScore"])
}

func TestSendSkipsEmptyTranscript(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	greeting := domain.Transcript{{Role: domain.RoleAgent, Text: "Hallo!"}}
	assert.True(t, c.Send(context.Background(), "v", greeting, domain.SessionState{}))
	assert.True(t, c.Send(context.Background(), "v", nil, domain.SessionState{}))
	assert.Equal(t, int32(0), hits.Load())
}

func TestSendNonSuccessStatusIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	ok := newTestClient(srv.URL).Send(context.Background(), "v", transcript(), domain.SessionState{})
	assert.False(t, ok)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSendRetriesTransportErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var sleeps []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	assert.True(t, c.Send(context.Background(), "v", transcript(), domain.SessionState{}))
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, sleeps)
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	var attempts int
	c.sleep = func(context.Context, time.Duration) error {
		attempts++
		return nil
	}
	assert.False(t, c.Send(context.Background(), "v", transcript(), domain.SessionState{}))
	assert.Equal(t, 2, attempts, "sleeps between three attempts")
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(srv.URL)
	c.http.Timeout = 20 * time.Millisecond
	assert.False(t, c.Send(context.Background(), "v", transcript(), domain.SessionState{}))
	assert.Equal(t, int32(3), hits.Load())
}

func TestSendWithoutURL(t *testing.T) {
	c := newTestClient("")
	assert.False(t, c.Send(context.Background(), "v", transcript(), domain.SessionState{}))
}
