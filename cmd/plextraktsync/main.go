// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

// Command plextraktsync scrobbles Plex playback to Trakt in real time.
//
// Usage:
//
//	plextraktsync watch [--config path]
//	plextraktsync version
//
// Configuration comes from defaults, an optional YAML file and environment
// variables (PLEX_URL, PLEX_TOKEN, TRAKT_CLIENT_ID, TRAKT_ACCESS_TOKEN, ...).
//
// Exit codes:
//   - 0: clean shutdown
//   - 1: unexpected error
//   - 2: invalid configuration
//   - 3: Trakt rejected the access token
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set via ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "plextraktsync",
		Usage:          "Real-time Plex to Trakt scrobbling",
		Version:        fmt.Sprintf("%s (commit: %s)", version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			watchCommand(),
			versionCommand(),
		},
	}
}

// exitErrHandler preserves exit codes from cli.Exit and prints other errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
