package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kula-app/webhook-qualifier/internal/config"
	"github.com/kula-app/webhook-qualifier/internal/flow"
	"github.com/kula-app/webhook-qualifier/internal/logging"
)

// The run function is like the main function, except that it takes in operating system fundamentals as arguments, and returns an error.
//
// If the run function finishes without an error, the flow reached its done state.
// If the run function returns an error, configuration failed or the flow ended in its failed state.
func run(ctx context.Context, args []string, getenv func(key string) string, stdout io.Writer) error {
	// The qualifier takes no flags; the flag set only provides -h and rejects stray arguments
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s\n\nRegisters, selects the answer and submits it once. Configuration is read from the environment:\n", args[0])
		for _, key := range []string{
			config.EnvName, config.EnvRegNo, config.EnvEmail, config.EnvRegistrationURL,
			config.EnvRequestTimeout, config.EnvAnswersFile, config.EnvAnswerOdd,
			config.EnvAnswerEven, config.EnvLogLevel, config.EnvEnvFile,
		} {
			fmt.Fprintf(flags.Output(), "  %s\n", key)
		}
	}
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	// Cancel in-flight requests when the process is asked to stop
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(getenv)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", config.EnvLogLevel, err)
	}
	logger := slog.New(logging.NewTerminalHandler(level))

	logger.Info("webhook qualifier starting")
	logger.Info("configuration loaded",
		"registration_url", cfg.RegistrationURL,
		"request_timeout", cfg.RequestTimeout,
		"name", cfg.Identity.Name,
		"reg_no", cfg.Identity.RegNo,
		"email", cfg.Identity.Email)

	outcome := flow.New(cfg, logger).Run(ctx)
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("qualifier flow failed: %w", err)
	}

	fmt.Fprintf(stdout, "submission status: %d\n%s\n", outcome.Result.StatusCode, outcome.Result.Body)
	return nil
}
