package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"desk-cli/internal/api"
	"desk-cli/internal/chat"
	"desk-cli/internal/session"
	"desk-cli/internal/syncer"
)

func execMain(root rootArgs, args []string) {
	if err := runExec(root, args, os.Stdout); err != nil {
		log.Fatalf("exec failed: %v", err)
	}
}

// runExec sends one message and prints the reply, without the TUI or the
// poller. Useful for scripting and smoke checks.
func runExec(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var sessionOverride string
	fs.StringVar(&sessionOverride, "session", "", "Session id to send under (default the stored session)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("usage: desk-cli exec [-session id] <message>")
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	sessionID := strings.TrimSpace(sessionOverride)
	if sessionID == "" {
		store, err := session.NewDefault()
		if err != nil {
			return err
		}
		if sessionID, err = store.LoadOrCreate(); err != nil {
			return err
		}
	}

	client, err := api.New(api.Options{BaseURL: cfg.URL, Timeout: cfg.RequestTimeout()})
	if err != nil {
		return err
	}

	renderer := consoleRenderer{out: out}
	coord := syncer.New(syncer.Options{
		API:       client,
		Store:     chat.NewStore(renderer),
		Renderer:  renderer,
		SessionID: sessionID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	return coord.Exchange(ctx, text)
}

// consoleRenderer prints bot output to a writer. User echoes and the
// composing indicator are meaningless on a one-shot invocation.
type consoleRenderer struct {
	out io.Writer
}

func (r consoleRenderer) Render(msg chat.Message) {
	if msg.Role == chat.RoleBot {
		fmt.Fprintln(r.out, msg.Text)
	}
}

func (r consoleRenderer) RenderLocal(role chat.Role, text string) {
	if role == chat.RoleBot {
		fmt.Fprintln(r.out, text)
	}
}

func (r consoleRenderer) ShowComposing() {}

func (r consoleRenderer) HideComposing() {}
