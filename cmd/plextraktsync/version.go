// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

// versionInfo is printed by the version command.
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date,omitempty"`
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: func(c *cli.Context) error {
			info := versionInfo{Version: version, Commit: commit, BuildDate: buildDate}
			if !c.Bool("json") {
				_, err := fmt.Fprintf(c.App.Writer, "plextraktsync %s (commit: %s)\n", info.Version, info.Commit)
				return err
			}
			data, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, string(data))
			return err
		},
	}
}
