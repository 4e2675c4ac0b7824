// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// rootCommand builds the application. Running it without a subcommand performs a transfer.
//
// Flags declared here are visible to every subcommand.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "amx",
		Usage:   "Transfer an Apple Music playlist to Spotify",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "apple_username",
				Aliases: []string{"apple-username", "u"},
				Usage:   "Apple Music username (required for a transfer)",
			},
			&cli.StringFlag{
				Name:    "playlist_name",
				Aliases: []string{"playlist-name", "p"},
				Usage:   "Name of the Apple Music playlist to transfer (required for a transfer)",
			},
			&cli.StringFlag{
				Name:    "spotify_playlist_name",
				Aliases: []string{"spotify-playlist-name"},
				Usage:   "Name for the new Spotify playlist (default: same as the Apple Music playlist)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of songs to transfer",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print every song and enable debug logging",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the playlist from a JSON or CSV export instead of the sample list",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Read the playlist from a public playlist page",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Description for the new Spotify playlist",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Search for every song without creating a playlist",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a per-song report to this path (.json, .csv, .md or .txt)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Transfer,
		Commands: []*cli.Command{
			authCommand(r),
			playlistsCommand(r),
			playlistCommand(r),
			previewCommand(r),
			configCommand(r),
		},
	}
}

// authCommand authenticates with Spotify and caches the token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify and cache the session token",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Discard the cached token and authorize again",
			},
		},
		Action: r.Auth,
	}
}

// playlistsCommand lists the current user's Spotify playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your Spotify playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Playlists,
	}
}

// playlistCommand shows one Spotify playlist
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Show a Spotify playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Spotify playlist ID",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Playlist,
	}
}

// previewCommand imports the source playlist without contacting Spotify
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Show the songs that would be transferred",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, json, csv or markdown",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Preview,
	}
}

// configCommand inspects the effective configuration
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
