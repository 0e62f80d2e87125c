package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"desk-cli/internal/auth"
)

func loginMain(_ rootArgs, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	var user string
	var withStdin bool
	fs.StringVar(&user, "user", "admin", "Admin user name")
	fs.BoolVar(&withStdin, "with-password", false, "Read the admin password from stdin instead of prompting")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse login args: %v", err)
	}

	var password string
	switch {
	case withStdin:
		password = readLine()
	case strings.TrimSpace(os.Getenv("DESK_ADMIN_PASSWORD")) != "":
		password = strings.TrimSpace(os.Getenv("DESK_ADMIN_PASSWORD"))
	default:
		fmt.Print("Admin password: ")
		password = readLine()
	}

	if err := auth.Save(user, password); err != nil {
		log.Fatalf("failed to save credentials: %v", err)
	}
	fmt.Println("admin credentials saved")
}

func logoutMain(_ rootArgs, _ []string) {
	if err := auth.Clear(); err != nil {
		log.Fatalf("failed to clear credentials: %v", err)
	}
	fmt.Println("admin credentials removed")
}

func readLine() string {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
