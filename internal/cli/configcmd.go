// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - configuration command handler for the gemrun CLI.
//
// Handles "gemrun config" which reads and writes the TOML config file.
//
// Command: config [get|set|path|show]
// Short:   Configuration
// Aliases: cfg
//
// Examples:
//   gemrun config                      Show all settings
//   gemrun config get api.model        Print one value
//   gemrun config set api.model pro    Set a value and save
//   gemrun config path                 Print the config file path
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/config"
)

// HandleConfig handles the "config" command and its subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		return configShow()
	case "get":
		if len(args.Raw) == 0 {
			return errors.New("usage: gemrun config get <key>")
		}
		return configGet(args.Raw[0])
	case "set":
		if len(args.Raw) < 2 {
			return errors.New("usage: gemrun config set <key> <value>")
		}
		return configSet(args.Raw[0], strings.Join(args.Raw[1:], " "), args.Quiet)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q (expected get, set, path, or show)", args.Subcommand)
	}
}

// configShow prints every known key with its current value.
func configShow() error {
	cfg := loadConfig()

	fmt.Println(TitleStyle.Render("gemrun configuration"))
	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("%s %v\n", LabelStyle.Render(key), value)
	}

	if path, err := config.ConfigPath(); err == nil {
		fmt.Println()
		fmt.Printf("%s %s\n", LabelStyle.Render("File:"), DimStyle.Render(path))
	}
	return nil
}

// configGet prints a single value, suitable for shell capture.
func configGet(key string) error {
	cfg := loadConfig()
	value, err := cfg.Get(key)
	if err != nil {
		return fmt.Errorf("unknown config key %q", key)
	}
	fmt.Printf("%v\n", value)
	return nil
}

// configSet updates one key and writes the config file back out.
func configSet(key, value string, quiet bool) error {
	// Load the raw file without env overrides so transient environment
	// values are not baked into it.
	cfg := config.Default()
	if path, err := config.ConfigPath(); err == nil {
		_ = config.LoadTOML(cfg, path)
	}
	cfg.SetDefaults()

	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("could not set %q: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %q: %w", key, err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	logEvent("CONFIG_SET", "key="+key)
	if !quiet {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	}
	return nil
}
