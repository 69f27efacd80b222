package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/notifykit/app/delivery"
	"github.com/dmitrymomot/notifykit/core/logger"
	"github.com/dmitrymomot/notifykit/core/server"
	"github.com/dmitrymomot/notifykit/integration/storage/s3"
)

type cli struct {
	cfg         Config
	log         *slog.Logger
	out         io.Writer
	newArchiver func(ctx context.Context, cfg s3.Config, log *slog.Logger) (recordArchiver, error)
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printUsage(c.out)
		return fmt.Errorf("%w: command", ErrMissingArgument)
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		printUsage(c.out)
		return nil
	}

	comps, err := wire(c.cfg, c.log)
	if err != nil {
		return err
	}

	rest := args[1:]
	switch args[0] {
	case "list":
		return c.list(ctx, comps)
	case "show":
		return c.show(ctx, comps, rest)
	case "resend":
		return c.resend(ctx, comps, rest)
	case "remove":
		return c.remove(ctx, comps, rest)
	case "archive":
		return c.archive(ctx, comps, rest)
	case "verify":
		return c.verify(ctx, comps)
	case "serve":
		return c.serve(ctx, comps)
	default:
		printUsage(c.out)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (c *cli) list(ctx context.Context, comps *components) error {
	records, err := comps.store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(c.out, "No failed emails stored.")
		return nil
	}

	color.New(color.FgCyan).Fprintf(c.out, "Failed emails (%d):\n\n", len(records))
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTO\tSUBJECT\tFILES")
	fmt.Fprintln(w, "--\t-------\t--\t-------\t-----")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			rec.ID,
			rec.CreatedAt.Format(time.DateTime),
			strings.Join(rec.To, ", "),
			shorten(rec.Subject, 40),
			len(rec.Attachments),
		)
	}
	return w.Flush()
}

func (c *cli) show(ctx context.Context, comps *components, args []string) error {
	id, err := recordID(args)
	if err != nil {
		return err
	}
	rec, err := comps.store.Get(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func (c *cli) resend(ctx context.Context, comps *components, args []string) error {
	if len(args) > 0 && args[0] == "--all" {
		sent, err := comps.mailer.ResendAll(ctx)
		if sent > 0 {
			color.New(color.FgGreen).Fprintf(c.out, "Resent %d email(s)\n", sent)
		}
		return err
	}

	id, err := recordID(args)
	if err != nil {
		return err
	}
	if err := comps.mailer.Resend(ctx, id); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.out, "Email %s resent\n", id)
	return nil
}

func (c *cli) remove(ctx context.Context, comps *components, args []string) error {
	id, err := recordID(args)
	if err != nil {
		return err
	}
	rec, err := comps.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := comps.store.Remove(ctx, id); err != nil {
		return err
	}
	comps.store.Attachments().DeleteAll(ctx, rec.Attachments)
	color.New(color.FgGreen).Fprintf(c.out, "Email %s removed\n", id)
	return nil
}

func (c *cli) archive(ctx context.Context, comps *components, args []string) error {
	id, err := recordID(args)
	if err != nil {
		return err
	}
	removeAfter := false
	for _, arg := range args[1:] {
		if arg != "--remove" {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, arg)
		}
		removeAfter = true
	}

	rec, err := comps.store.Get(ctx, id)
	if err != nil {
		return err
	}
	archiver, err := c.newArchiver(ctx, c.cfg.S3, c.log)
	if err != nil {
		return err
	}
	keys, err := archiver.Archive(ctx, rec)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(c.out, "Email %s archived:\n", id)
	for _, key := range keys {
		fmt.Fprintf(c.out, "  %s\n", key)
	}

	if !removeAfter {
		return nil
	}
	if err := comps.store.Remove(ctx, id); err != nil {
		return err
	}
	comps.store.Attachments().DeleteAll(ctx, rec.Attachments)
	return nil
}

func (c *cli) verify(ctx context.Context, comps *components) error {
	if err := comps.mailer.Verify(ctx); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(c.out, "Email transport is reachable")
	return nil
}

func (c *cli) serve(ctx context.Context, comps *components) error {
	store, checks, closeStore, err := newRateLimitStore(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer closeStore()

	app, err := delivery.New(comps.mailer,
		delivery.WithConfig(c.cfg.Delivery),
		delivery.WithRateLimitStore(store),
		delivery.WithNotifier(comps.notifier, comps.formatter),
		delivery.WithReadinessChecks(checks...),
		delivery.WithLogger(c.log),
	)
	if err != nil {
		return err
	}
	srv, err := server.NewFromConfig(c.cfg.Server, server.WithLogger(c.log))
	if err != nil {
		return err
	}

	// An unreachable transport is reported but does not block startup:
	// failed deliveries are persisted for resend.
	if err := comps.mailer.Verify(ctx); err != nil {
		c.log.WarnContext(ctx, "Starting with unverified email transport", logger.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(app.Run(gctx))
	g.Go(srv.Run(gctx, app.Handler()))
	return g.Wait()
}

func recordID(args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "--") {
		return "", fmt.Errorf("%w: record id", ErrMissingArgument)
	}
	return args[0], nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
