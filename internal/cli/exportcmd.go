// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// exportcmd.go - conversation export command handler for the gemrun CLI.
//
// Handles "gemrun export <id>" which writes a saved conversation to a
// file in one of the supported formats.
//
// Command: export <id>
// Short:   Export a conversation
//
// Examples:
//   gemrun export conv_123                       Markdown to the current dir
//   gemrun export conv_123 --format html         Standalone HTML page
//   gemrun export conv_123 --format json --out ~/notes
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/export"
)

// HandleExport handles the "export" command.
func HandleExport(args Args) error {
	id := args.Subcommand
	if id == "" {
		return errors.New("usage: gemrun export <conversation-id> [--format md|json|html|txt] [--out dir]")
	}

	format := args.Options["format"]
	if format == "" {
		format = "md"
	}

	exporter, err := export.ForFormat(format)
	if err != nil {
		return fmt.Errorf("unknown format %q (supported: %s)",
			format, strings.Join(export.Formats(), ", "))
	}

	archive, err := openArchive()
	if err != nil {
		return err
	}
	conv, err := archive.Load(id)
	if err != nil {
		return fmt.Errorf("could not load conversation %q: %w", id, err)
	}

	opts := export.DefaultOptions()
	if out := args.Options["out"]; out != "" {
		opts.OutputDir = out
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	logEvent("EXPORT", "id="+id, "format="+format, "path="+path)
	if !args.Quiet {
		fmt.Printf("%s exported to %s\n", SuccessStyle.Render("[OK]"), path)
	}
	return nil
}
