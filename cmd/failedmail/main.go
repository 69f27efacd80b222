// Command failedmail operates on the failed email store: it lists, shows,
// resends, archives and removes stored deliveries, and serves the feedback
// delivery API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/dmitrymomot/notifykit/core/config"
	"github.com/dmitrymomot/notifykit/core/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.WithConfig(cfg.Logger), logger.WithAttr(
		slog.String("app", cfg.Notify.AppName),
		slog.String("env", cfg.Notify.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{cfg: cfg, log: log, out: os.Stdout, newArchiver: newS3Archiver}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		color.Red("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintln(w, "failedmail - failed email store operations")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  failedmail <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                         List stored failed emails")
	fmt.Fprintln(w, "  show <id>                    Print a stored email as JSON")
	fmt.Fprintln(w, "  resend <id> | --all          Deliver stored emails again")
	fmt.Fprintln(w, "  remove <id>                  Delete a stored email and its attachments")
	fmt.Fprintln(w, "  archive <id> [--remove]      Upload a stored email to S3")
	fmt.Fprintln(w, "  verify                       Check the email transport")
	fmt.Fprintln(w, "  serve                        Run the feedback delivery API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration is read from the environment and an optional .env file.")
}
