// Command storefront drives the cart and wishlist sync layer from a
// terminal. Every invocation restores the remembered session, runs one
// command against the storefront API and waits for background calls.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"rokomferi-storefront/config"
	"rokomferi-storefront/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	// Logs go to stderr so command output stays clean.
	logger.InitWithWriter(cfg.Env, cfg.LogLevel, os.Stderr)

	root := newRootCmd(&cli{cfg: cfg, log: logger.Get()})
	if err := root.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints a failed command's error, unless the command already
// explained itself.
func reportError(w io.Writer, err error) {
	if errors.Is(err, errLoginRequired) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
