package main

import (
	"os"

	"github.com/soyeahso/boothbot/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	// Opt-in: autorestart re-execs without running session shutdown.
	if os.Getenv("BOOTHBOT_AUTORESTART") != "" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
