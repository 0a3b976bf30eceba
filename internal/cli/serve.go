package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/boothbot/internal/config"
	"github.com/soyeahso/boothbot/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kiosk gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			runLog, closeLog, err := serveLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newKioskApp(ctx, cfg, paths, runLog)
			if err != nil {
				return err
			}
			runLog.Info().
				Str("leads", paths.Leads).
				Str("history", paths.History).
				Str("notify", cfg.Notify.Transport).
				Str("reply", cfg.Reply.Provider).
				Msg("boothbot starting")
			return app.run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}

// serveLogger honours --log-level first, then the config, and tees to a
// log file when logging.file is set.
func serveLogger(cfg config.Config) (*logging.Logger, func(), error) {
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	if !cfg.Logging.File {
		return logging.New(nil, level), func() {}, nil
	}
	l, closer, err := logging.NewWithFile(paths.Logs, level)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return l, func() { _ = closer.Close() }, nil
}
