package config

import "time"

// Config is the root configuration for a boothbot kiosk.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Kiosk    KioskConfig    `yaml:"kiosk,omitempty"`
	Webhook  WebhookConfig  `yaml:"webhook,omitempty"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
	Reply    ReplyConfig    `yaml:"reply,omitempty"`
	Presence PresenceConfig `yaml:"presence,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket server the voice runtime and
// the booth display connect to.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Token          string   `yaml:"token,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  bool   `yaml:"file,omitempty"`  // also write JSON logs under the logs directory
}

// KioskConfig tunes the conversation controller.
type KioskConfig struct {
	DefaultLanguage       string        `yaml:"defaultLanguage,omitempty"`
	DefaultCampaignSource string        `yaml:"defaultCampaignSource,omitempty"`
	EngagementThreshold   int           `yaml:"engagementThreshold,omitempty"`
	WarmThreshold         int           `yaml:"warmThreshold,omitempty"`
	ScoreScale            int           `yaml:"scoreScale,omitempty"`
	Deltas                IntentDeltas  `yaml:"deltas,omitempty"`
	VagueMarkers          []string      `yaml:"vagueMarkers,omitempty"`
	ShutdownTimeout       time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// IntentDeltas are the intent score increments applied by the tools.
type IntentDeltas struct {
	Presentation      int `yaml:"presentation,omitempty"`
	VagueChallenge    int `yaml:"vagueChallenge,omitempty"`
	SpecificChallenge int `yaml:"specificChallenge,omitempty"`
	ContactOffered    int `yaml:"contactOffered,omitempty"`
}

// WebhookConfig configures the CRM webhook.
type WebhookConfig struct {
	URL           string        `yaml:"url,omitempty"`
	APIKey        string        `yaml:"apiKey,omitempty"`
	CompanyName   string        `yaml:"companyName,omitempty"`
	BoothLocation string        `yaml:"boothLocation,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	Retries       int           `yaml:"retries,omitempty"`
}

// NotifyConfig configures the lead notification e-mail.
type NotifyConfig struct {
	Transport  string        `yaml:"transport,omitempty"` // "smtp" | "resend" | "none"
	From       string        `yaml:"from,omitempty"`
	Recipients []string      `yaml:"recipients,omitempty"`
	Retries    int           `yaml:"retries,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	SMTP       SMTPConfig    `yaml:"smtp,omitempty"`
	Resend     ResendConfig  `yaml:"resend,omitempty"`
}

// SMTPConfig holds STARTTLS submission settings.
type SMTPConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// ResendConfig holds Resend API settings.
type ResendConfig struct {
	APIKey string `yaml:"apiKey,omitempty"`
}

// ReplyConfig configures spoken reply generation.
type ReplyConfig struct {
	Provider string        `yaml:"provider,omitempty"` // "gemini" | "none"
	APIKey   string        `yaml:"apiKey,omitempty"`
	Model    string        `yaml:"model,omitempty"`
	Attempts int           `yaml:"attempts,omitempty"`
	Backoff  time.Duration `yaml:"backoff,omitempty"`
}

// PresenceConfig configures the optional Redis session registry.
type PresenceConfig struct {
	RedisURL      string        `yaml:"redisUrl,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	TTL           time.Duration `yaml:"ttl,omitempty"`
}
