package cli

import (
	"fmt"
	"strings"

	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/leads"
	"github.com/soyeahso/boothbot/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show boothbot configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "boothbot %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:   %s\n", paths.Config)
			fmt.Fprintf(out, "Leads:    %s\n", paths.Leads)
			fmt.Fprintf(out, "History:  %s\n", paths.History)
			fmt.Fprintf(out, "Logs:     %s\n", paths.Logs)
			fmt.Fprintln(out)

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:   error loading: %v\n", err)
				return nil
			}

			auth := "open"
			if cfg.Gateway.Token != "" {
				auth = "token"
			}
			fmt.Fprintf(out, "Gateway:  port=%d bind=%s auth=%s\n", cfg.Gateway.Port, cfg.Gateway.Bind, auth)
			fmt.Fprintf(out, "Kiosk:    language=%s source=%s warm>=%d\n",
				cfg.Kiosk.DefaultLanguage, cfg.Kiosk.DefaultCampaignSource, cfg.Kiosk.WarmThreshold)

			if cfg.Webhook.URL != "" {
				fmt.Fprintf(out, "Webhook:  %s (retries=%d)\n", cfg.Webhook.URL, cfg.Webhook.Retries)
			} else {
				fmt.Fprintln(out, "Webhook:  (not configured)")
			}

			if cfg.Notify.Transport != "none" && len(cfg.Notify.Recipients) > 0 {
				fmt.Fprintf(out, "Notify:   %s -> %s\n", cfg.Notify.Transport, strings.Join(cfg.Notify.Recipients, ", "))
			} else {
				fmt.Fprintln(out, "Notify:   (disabled)")
			}

			replyKey := "missing key"
			if cfg.Reply.APIKey != "" {
				replyKey = "key set"
			}
			fmt.Fprintf(out, "Reply:    %s model=%s (%s)\n", cfg.Reply.Provider, cfg.Reply.Model, replyKey)

			if cfg.Presence.RedisURL != "" {
				fmt.Fprintf(out, "Presence: %s ttl=%s\n", cfg.Presence.RedisURL, cfg.Presence.TTL)
			} else {
				fmt.Fprintln(out, "Presence: (disabled)")
			}

			stored, err := leads.NewStore(paths.Leads, log).List()
			if err != nil {
				fmt.Fprintf(out, "Leads:    error listing: %v\n", err)
			} else {
				fmt.Fprintf(out, "Leads:    %d stored\n", len(stored))
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
