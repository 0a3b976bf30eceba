package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// DefaultVagueMarkers are phrases that mark a challenge answer as vague.
var DefaultVagueMarkers = []string{
	"not sure",
	"no idea",
	"nothing specific",
	"nothing",
	"just looking",
	"just browsing",
	"no challenge",
	"keine ahnung",
	"nichts",
	"weiss nicht",
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: 18790,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Kiosk: KioskConfig{
			DefaultLanguage:       "de",
			DefaultCampaignSource: "euroshop_2026_qr",
			EngagementThreshold:   3,
			WarmThreshold:         3,
			ScoreScale:            20,
			Deltas: IntentDeltas{
				Presentation:      2,
				VagueChallenge:    1,
				SpecificChallenge: 3,
				ContactOffered:    2,
			},
			VagueMarkers:    append([]string(nil), DefaultVagueMarkers...),
			ShutdownTimeout: 15 * time.Second,
		},
		Webhook: WebhookConfig{
			URL:           "https://ayand-log.vercel.app/api/webhooks/ingest",
			CompanyName:   "Ayand AI",
			BoothLocation: "A1",
			Timeout:       10 * time.Second,
			Retries:       3,
		},
		Notify: NotifyConfig{
			Transport:  "smtp",
			Recipients: []string{"info@ayand.ai"},
			Retries:    3,
			Timeout:    30 * time.Second,
			SMTP: SMTPConfig{
				Host: "smtp.gmail.com",
				Port: 587,
			},
		},
		Reply: ReplyConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Attempts: 3,
			Backoff:  time.Second,
		},
		Presence: PresenceConfig{
			TTL: 2 * time.Hour,
		},
	}
}
