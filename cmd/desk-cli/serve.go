package main

import (
	"errors"
	"flag"
	"net/http"
	"strings"
	"time"

	"desk-cli/internal/server"
)

func serveMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var addr string
	fs.StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse serve args: %v", err)
	}

	cfg, err := root.loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	password := strings.TrimSpace(cfg.AdminPassword)
	if password == "" {
		password = "admin"
		log.Warnf("admin_password not configured; admin surface uses the default password")
	}

	srv := server.New(server.Options{
		AdminUser:     cfg.AdminUser,
		AdminPassword: password,
	})
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("helpdesk server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server exit: %v", err)
	}
}
