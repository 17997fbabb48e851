// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// servecmd.go - local web chat command handler for the gemrun CLI.
//
// Handles "gemrun serve" which hosts the browser chat page on loopback.
// The server binds 127.0.0.1 only and shuts down gracefully on Ctrl+C.
//
// Command: serve [--port N]
// Short:   Serve the browser chat page
//
// Examples:
//   gemrun serve                 Serve on the configured port (default 8791)
//   gemrun serve --port 9000     Serve on a specific port
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jeranaias/gemrun-tui/internal/server"
)

// HandleServe handles the "serve" command.
func HandleServe(args Args) error {
	cfg := loadConfig()

	if portStr := args.Options["port"]; portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", portStr)
		}
		cfg.Server.Port = port
	}

	client, err := buildClient(cfg, args.Model)
	if err != nil {
		return err
	}
	st, err := buildStore(cfg, client)
	if err != nil {
		return err
	}

	// Search is optional; the server degrades gracefully without it.
	idx, err := openIndex(cfg)
	if err != nil {
		idx = nil
	} else {
		defer idx.Close()
	}

	srv := server.New(cfg, st, idx)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("gemrun serve"))
		fmt.Printf("%s %s\n", LabelStyle.Render("URL:"),
			ValueStyle.Render("http://"+srv.Addr()))
		fmt.Printf("%s %s\n", LabelStyle.Render("Model:"),
			ValueStyle.Render(client.GetModel()))
		fmt.Println(DimStyle.Render("Loopback only. Press Ctrl+C to stop."))
	}

	logEvent("SERVE_START", "addr="+srv.Addr())
	return srv.Run(ctx)
}
