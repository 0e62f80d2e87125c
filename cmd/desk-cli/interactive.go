package main

import (
	"flag"
	"strings"

	"desk-cli/internal/api"
	"desk-cli/internal/chat"
	"desk-cli/internal/history"
	"desk-cli/internal/session"
	"desk-cli/internal/syncer"
	"desk-cli/internal/tui"
)

func runInteractive(root rootArgs, args []string) {
	fs := flag.NewFlagSet("desk-cli", flag.ExitOnError)
	var sessionOverride string
	fs.StringVar(&sessionOverride, "session", "", "Chat under a specific session id instead of the stored one")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}

	cfg, err := root.loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sessionID := strings.TrimSpace(sessionOverride)
	if sessionID == "" {
		store, err := session.NewDefault()
		if err != nil {
			log.Fatalf("failed to locate session store: %v", err)
		}
		sessionID, err = store.LoadOrCreate()
		if err != nil {
			log.Fatalf("failed to load session: %v", err)
		}
	}

	client, err := api.New(api.Options{BaseURL: cfg.URL, Timeout: cfg.RequestTimeout()})
	if err != nil {
		log.Fatalf("failed to init api client: %v", err)
	}

	renderer := tui.NewRenderer(256)
	store := chat.NewStore(renderer)
	queue := syncer.NewQueue(64)
	defer queue.Close()
	poller := syncer.NewPoller(queue, cfg.PollInterval())
	coord := syncer.New(syncer.Options{
		API:       client,
		Store:     store,
		Renderer:  renderer,
		Queue:     queue,
		Poller:    poller,
		SessionID: sessionID,
	})

	hist, err := history.NewDefault()
	if err != nil {
		log.Warnf("prompt history unavailable: %v", err)
		hist = nil
	}

	if err := tui.Run(tui.RunOptions{
		Coordinator: coord,
		Poller:      poller,
		Model: tui.Options{
			Gateway:   coord,
			Renderer:  renderer,
			ServerURL: cfg.URL,
			SessionID: sessionID,
			History:   hist,
		},
	}); err != nil {
		log.Fatalf("program exit: %v", err)
	}
}
