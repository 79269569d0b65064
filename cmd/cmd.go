// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

// runCommand handles the daily playlist build pipeline
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Fetch a day's broadcast log, match it, and create a Spotify playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "Broadcast date (YYYY-MM-DD)",
				Value:   today(),
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Window start time (HH:MM)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Window end time (HH:MM)",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (default: \"<prefix> <date>\")",
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Create the playlist as private",
			},
			&cli.BoolFlag{
				Name:    "preview",
				Aliases: []string{"p"},
				Usage:   "Match only, do not create a playlist",
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Use the cached broadcast log only, never fetch",
			},
			&cli.StringSliceFlag{
				Name:  "resolve",
				Usage: "Manual match override, INDEX=CHOICE (choice: skip, candidate number, or track ID)",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Write a CSV report to the given path",
			},
			&cli.StringFlag{
				Name:  "markdown",
				Usage: "Write a Markdown report to the given path",
			},
		},
		Action: r.Run,
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// reviewCommand launches the interactive TUI for resolving pending matches.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "review",
		Aliases: []string{"tui"},
		Usage:   "Interactively resolve ambiguous and unmatched songs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "Broadcast date (YYYY-MM-DD)",
				Value:   today(),
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Window start time (HH:MM)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Window end time (HH:MM)",
			},
		},
		Action: r.Review,
	}
}

// resolveCommand manages the durable resolution cache
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Manage saved match decisions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved match decisions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ResolveList,
			},
			{
				Name:  "remove",
				Usage: "Remove the decision for a song fingerprint",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "fingerprint",
					},
				},
				Action: r.ResolveRemove,
			},
			{
				Name:  "clear",
				Usage: "Remove all saved decisions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.ResolveClear,
			},
		},
	}
}

// cacheCommand manages the broadcast-log snapshot cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached broadcast logs",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the cached broadcast log for a date",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Broadcast date (YYYY-MM-DD)",
						Value:   today(),
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:  "clear",
				Usage: "Remove cached broadcast logs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Broadcast date to clear; clears everything when omitted",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
