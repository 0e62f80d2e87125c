package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"desk-cli/internal/admin"
	"desk-cli/internal/auth"

	"github.com/mattn/go-runewidth"
)

func ticketsMain(root rootArgs, args []string) {
	if err := runTickets(root, args, os.Stdout); err != nil {
		log.Fatalf("tickets failed: %v", err)
	}
}

func runTickets(root rootArgs, args []string, out io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	user := cfg.AdminUser
	password := cfg.AdminPassword
	if strings.TrimSpace(password) == "" {
		creds, err := auth.Load()
		if err != nil {
			return err
		}
		if creds.Password != "" {
			user, password = creds.User, creds.Password
		}
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("no admin credentials; run `desk-cli login` or set admin_password in config")
	}

	client, err := admin.New(admin.Options{
		BaseURL:  cfg.URL,
		User:     user,
		Password: password,
		Timeout:  cfg.RequestTimeout(),
	})
	if err != nil {
		return err
	}

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	ctx := context.Background()
	switch sub {
	case "list":
		fs := flag.NewFlagSet("tickets list", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		var status string
		fs.StringVar(&status, "status", "", "Filter by status (open, in_progress, resolved)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		tickets, err := client.ListTickets(ctx, status)
		if err != nil {
			return err
		}
		return printTickets(out, tickets)
	case "update":
		fs := flag.NewFlagSet("tickets update", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		var status, note string
		fs.StringVar(&status, "status", "", "New status (open, in_progress, resolved)")
		fs.StringVar(&note, "note", "", "Admin note to attach")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: desk-cli tickets update [-status s] [-note n] <id>")
		}
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ticket id %q", fs.Arg(0))
		}
		var update admin.TicketUpdate
		if status != "" {
			update.Status = &status
		}
		if note != "" {
			update.AdminNote = &note
		}
		if update.Status == nil && update.AdminNote == nil {
			return fmt.Errorf("nothing to update: pass -status and/or -note")
		}
		ticket, err := client.UpdateTicket(ctx, id, update)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "ticket %s updated: status=%s\n", admin.TrackingID(ticket.ID), ticket.Status)
		return nil
	case "stats":
		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "sessions=%d messages=%d tickets=%d open=%d\n",
			stats.Sessions, stats.Messages, stats.Tickets, stats.OpenTickets)
		return nil
	default:
		return fmt.Errorf("unknown tickets subcommand %q (want list, update or stats)", sub)
	}
}

func printTickets(out io.Writer, tickets []admin.Ticket) error {
	if len(tickets) == 0 {
		_, _ = fmt.Fprintln(out, "no tickets")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tCREATED\tTEXT")
	for _, t := range tickets {
		text := runewidth.Truncate(t.OriginalText, 48, "…")
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			admin.TrackingID(t.ID), t.Status, t.PredictedCategory,
			t.CreatedAt.Local().Format("2006-01-02 15:04"), text)
	}
	return tw.Flush()
}
