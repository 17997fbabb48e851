// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// authcmd.go - API key management command handler for the gemrun CLI.
//
// Handles "gemrun auth" which stores, inspects, and removes the Gemini
// API key. Keys are sealed with AES-256-GCM before touching disk; the
// environment always wins over the stored key.
//
// Command: auth [set|show|clear]
// Short:   Manage the API key
//
// Examples:
//   gemrun auth set          Prompt for a key (input hidden)
//   gemrun auth show         Show key source and masked value
//   gemrun auth clear        Remove the stored key
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/gemrun-tui/internal/auth"
	"github.com/jeranaias/gemrun-tui/internal/gemini"
)

// HandleAuth handles the "auth" command and its subcommands.
func HandleAuth(args Args) error {
	switch args.Subcommand {
	case "set":
		return authSet(args)
	case "", "show", "status":
		return authShow(args)
	case "clear", "remove":
		return authClear(args)
	default:
		return fmt.Errorf("unknown auth subcommand %q (expected set, show, or clear)", args.Subcommand)
	}
}

// authSet prompts for a key without echo and stores it sealed.
func authSet(args Args) error {
	var key string

	if IsTTY() {
		fmt.Print("Gemini API key: ")
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("could not read key: %w", err)
		}
		key = strings.TrimSpace(string(keyBytes))
		auth.ZeroBytes(keyBytes)
	} else {
		// Piped input: read one line from stdin.
		var line string
		if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
			return errors.New("no key provided on stdin")
		}
		key = strings.TrimSpace(line)
	}

	if key == "" {
		return errors.New("no key entered")
	}
	if !gemini.ValidateAPIKey(key) {
		fmt.Fprintf(os.Stderr, "%s key does not look like a Gemini API key; storing anyway\n",
			WarningStyle.Render("[Warning]"))
	}

	if err := auth.NewStore().Set(key); err != nil {
		return fmt.Errorf("could not store key: %w", err)
	}

	logEvent("AUTH_SET")
	if !args.Quiet {
		fmt.Printf("%s API key stored (%s)\n",
			SuccessStyle.Render("[OK]"), auth.MaskKey(key))
	}
	return nil
}

// authShow prints where the active key comes from, with the key masked.
func authShow(args Args) error {
	status := auth.NewStore().Status()

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Println(TitleStyle.Render("API key status"))
	if !status.Configured {
		fmt.Println(DimStyle.Render("No API key configured."))
		fmt.Println(DimStyle.Render("Run \"gemrun auth set\" or export GEMINI_API_KEY."))
		return nil
	}

	fmt.Printf("%s %s\n", LabelStyle.Render("Source:"), ValueStyle.Render(status.Source))
	fmt.Printf("%s %s\n", LabelStyle.Render("Key:"), ValueStyle.Render(status.Masked))
	fmt.Printf("%s %s\n", LabelStyle.Render("Store:"), ValueStyle.Render(status.Path))
	fmt.Printf("%s %s\n", LabelStyle.Render("Cipher:"), DimStyle.Render(status.Algorithm))
	return nil
}

// authClear removes the stored key. The environment key is untouched.
func authClear(args Args) error {
	if err := auth.NewStore().Clear(); err != nil {
		return fmt.Errorf("could not clear key: %w", err)
	}
	logEvent("AUTH_CLEAR")
	if !args.Quiet {
		fmt.Printf("%s stored API key removed\n", SuccessStyle.Render("[OK]"))
	}
	return nil
}
