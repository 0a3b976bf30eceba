package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and passwords can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Gateway.Token = expandEnvVars(cfg.Gateway.Token)
	cfg.Webhook.URL = expandEnvVars(cfg.Webhook.URL)
	cfg.Webhook.APIKey = expandEnvVars(cfg.Webhook.APIKey)
	cfg.Notify.SMTP.Username = expandEnvVars(cfg.Notify.SMTP.Username)
	cfg.Notify.SMTP.Password = expandEnvVars(cfg.Notify.SMTP.Password)
	cfg.Notify.Resend.APIKey = expandEnvVars(cfg.Notify.Resend.APIKey)
	cfg.Reply.APIKey = expandEnvVars(cfg.Reply.APIKey)
	cfg.Presence.RedisURL = expandEnvVars(cfg.Presence.RedisURL)
	cfg.Presence.RedisPassword = expandEnvVars(cfg.Presence.RedisPassword)
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	d := Defaults()

	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = d.Gateway.Port
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = d.Gateway.Bind
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}

	k := &cfg.Kiosk
	if k.DefaultLanguage == "" {
		k.DefaultLanguage = d.Kiosk.DefaultLanguage
	}
	if k.DefaultCampaignSource == "" {
		k.DefaultCampaignSource = d.Kiosk.DefaultCampaignSource
	}
	if k.EngagementThreshold == 0 {
		k.EngagementThreshold = d.Kiosk.EngagementThreshold
	}
	if k.WarmThreshold == 0 {
		k.WarmThreshold = d.Kiosk.WarmThreshold
	}
	if k.ScoreScale == 0 {
		k.ScoreScale = d.Kiosk.ScoreScale
	}
	if k.Deltas.Presentation == 0 {
		k.Deltas.Presentation = d.Kiosk.Deltas.Presentation
	}
	if k.Deltas.VagueChallenge == 0 {
		k.Deltas.VagueChallenge = d.Kiosk.Deltas.VagueChallenge
	}
	if k.Deltas.SpecificChallenge == 0 {
		k.Deltas.SpecificChallenge = d.Kiosk.Deltas.SpecificChallenge
	}
	if k.Deltas.ContactOffered == 0 {
		k.Deltas.ContactOffered = d.Kiosk.Deltas.ContactOffered
	}
	if len(k.VagueMarkers) == 0 {
		k.VagueMarkers = d.Kiosk.VagueMarkers
	}
	if k.ShutdownTimeout == 0 {
		k.ShutdownTimeout = d.Kiosk.ShutdownTimeout
	}

	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = d.Webhook.Timeout
	}
	if cfg.Webhook.Retries == 0 {
		cfg.Webhook.Retries = d.Webhook.Retries
	}
	if cfg.Webhook.CompanyName == "" {
		cfg.Webhook.CompanyName = d.Webhook.CompanyName
	}

	if cfg.Notify.Transport == "" {
		cfg.Notify.Transport = d.Notify.Transport
	}
	if len(cfg.Notify.Recipients) == 0 {
		cfg.Notify.Recipients = d.Notify.Recipients
	}
	if cfg.Notify.Retries == 0 {
		cfg.Notify.Retries = d.Notify.Retries
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = d.Notify.Timeout
	}
	if cfg.Notify.SMTP.Host == "" {
		cfg.Notify.SMTP.Host = d.Notify.SMTP.Host
	}
	if cfg.Notify.SMTP.Port == 0 {
		cfg.Notify.SMTP.Port = d.Notify.SMTP.Port
	}

	if cfg.Reply.Provider == "" {
		cfg.Reply.Provider = d.Reply.Provider
	}
	if cfg.Reply.Model == "" {
		cfg.Reply.Model = d.Reply.Model
	}
	if cfg.Reply.Attempts == 0 {
		cfg.Reply.Attempts = d.Reply.Attempts
	}
	if cfg.Reply.Backoff == 0 {
		cfg.Reply.Backoff = d.Reply.Backoff
	}

	if cfg.Presence.TTL == 0 {
		cfg.Presence.TTL = d.Presence.TTL
	}
}

// applyEnvOverrides reads BOOTHBOT_* and the deployment's well-known
// variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOOTHBOT_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("BOOTHBOT_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("BOOTHBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BOOTHBOT_BOOTH_LOCATION"); v != "" {
		cfg.Webhook.BoothLocation = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("WEBHOOK_API_KEY"); v != "" {
		cfg.Webhook.APIKey = v
	}
	if v := os.Getenv("WEBHOOK_COMPANY_NAME"); v != "" {
		cfg.Webhook.CompanyName = v
	}
	if v := os.Getenv("EMAIL_SENDER"); v != "" {
		cfg.Notify.SMTP.Username = v
		if cfg.Notify.From == "" {
			cfg.Notify.From = v
		}
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.Notify.SMTP.Password = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.Notify.Resend.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.Reply.APIKey == "" {
		cfg.Reply.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Presence.RedisURL = v
	}
}
