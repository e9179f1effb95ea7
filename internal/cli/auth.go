// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/kindred-tui/internal/api"
	"github.com/jeranaias/kindred-tui/internal/config"
)

// newClient builds an API client from the global configuration with the
// persistent cookie jar.
func newClient() (*api.Client, error) {
	cfg := config.Global()
	cookiePath, err := config.CookiePath()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSecs)*time.Second, cookiePath)
}

// promptLine reads one line from stdin with a label.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	// SECURITY: no-echo input so the password never lands in the scrollback
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// HandleLogin signs in and persists the session cookie.
func HandleLogin(args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		var err error
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err, "login failed"))
	}

	me, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("login succeeded but the session could not be verified: %w", err)
	}
	fmt.Printf("Signed in as %s <%s>\n", me.Name, me.Email)
	return nil
}

// HandleRegister creates an account and signs in.
func HandleRegister(args []string) error {
	name, err := promptLine("Name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := client.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("%s", api.UserMessage(err, "registration failed"))
	}
	if err := client.Login(ctx, email, password); err != nil {
		fmt.Println("Account created. Run `kindred login` to sign in.")
		return nil
	}
	fmt.Printf("Welcome to kindred, %s!\n", name)
	return nil
}

// HandleLogout signs out and clears the local session.
func HandleLogout(args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	if err := client.Logout(context.Background()); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}
