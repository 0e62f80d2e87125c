package main

import (
	"os"

	"desk-cli/internal/logger"
)

var log = logger.Named("main")

func main() {
	logger.Configure()
	if logFile, _, err := logger.SetupFile(logger.DefaultLogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "exec":
			execMain(root, rest[1:])
			return
		case "ping":
			pingMain(root, rest[1:])
			return
		case "serve":
			serveMain(root, rest[1:])
			return
		case "session":
			sessionMain(root, rest[1:])
			return
		case "tickets":
			ticketsMain(root, rest[1:])
			return
		case "login":
			loginMain(root, rest[1:])
			return
		case "logout":
			logoutMain(root, rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}
