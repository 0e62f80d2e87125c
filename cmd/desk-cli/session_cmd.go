package main

import (
	"fmt"

	"desk-cli/internal/session"
)

func sessionMain(_ rootArgs, args []string) {
	store, err := session.NewDefault()
	if err != nil {
		log.Fatalf("failed to locate session store: %v", err)
	}

	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "show":
		id, err := store.LoadOrCreate()
		if err != nil {
			log.Fatalf("failed to load session: %v", err)
		}
		fmt.Println(id)
	case "reset":
		id, err := store.Reset()
		if err != nil {
			log.Fatalf("failed to reset session: %v", err)
		}
		fmt.Printf("new session: %s\n", id)
	default:
		log.Fatalf("unknown session subcommand %q (want show or reset)", sub)
	}
}
