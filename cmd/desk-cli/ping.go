package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"desk-cli/internal/api"
)

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
}

func runPing(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var timeoutSeconds int
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout seconds (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	timeout := cfg.RequestTimeout()
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}

	client, err := api.New(api.Options{BaseURL: cfg.URL, Timeout: timeout})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if err := client.Health(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "ok: %s (%s)\n", cfg.URL, time.Since(start).Round(time.Millisecond))
	return nil
}
