package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/extract"
	"github.com/chatstash/chatstash/internal/msg"
	"github.com/chatstash/chatstash/internal/ops"
	"github.com/chatstash/chatstash/internal/turn"
	"github.com/chatstash/chatstash/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "chatstash",
		Usage:   "Save and organize AI chat conversations",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(db, cfg),
			saveCmd(db, cfg),
			listCmd(db),
			deleteTurnCmd(db),
			deleteFolderCmd(db),
			clearEmptyCmd(db),
			cleanCmd(),
			exportCmd(db, cfg, baseDir),
			importCmd(db, cfg, baseDir),
			watchCmd(db, cfg),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Extract the latest prompt/response pair from a page snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Snapshot HTML file (default: configured snapshot path)"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Page address for platform detection"},
			&cli.StringFlag{Name: "selection", Usage: "Selected text (fallback response on unsupported pages)"},
			&cli.StringFlag{Name: "input", Usage: "Focused input value (fallback prompt on unsupported pages)"},
			&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "Save the captured pair immediately"},
			&cli.StringFlag{Name: "folder", Usage: "Destination folder when saving"},
		},
		Action: func(c *cli.Context) error {
			pair, err := ops.Capture(cfg, ops.CaptureInput{
				HTMLPath:  c.String("file"),
				URL:       c.String("url"),
				Selection: c.String("selection"),
				Input:     c.String("input"),
			})
			if err != nil {
				return outputError(err)
			}

			if !c.Bool("save") {
				return outputJSON(pair)
			}

			saved, err := ops.SaveTurn(db, cfg, ops.SaveTurnInput{
				Prompt:   pair.Prompt,
				Response: pair.Response,
				URL:      pair.URL,
				Platform: pair.Platform,
				Folder:   c.String("folder"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(saved)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a prompt/response pair (response may be piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "User prompt text"},
			&cli.StringFlag{Name: "response", Aliases: []string{"r"}, Usage: "Assistant response text"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Page address the pair came from"},
			&cli.StringFlag{Name: "platform", Usage: "Source platform (chatgpt|gemini|claude|unknown)"},
			&cli.StringFlag{Name: "folder", Aliases: []string{"F"}, Usage: "Destination folder (default: configured default folder)"},
		},
		Action: func(c *cli.Context) error {
			response := c.String("response")
			if response == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				response = text
			}
			if c.String("prompt") == "" && response == "" {
				return outputError(errors.NewInvalidRequest("prompt or response is required"))
			}

			output, err := ops.SaveTurn(db, cfg, ops.SaveTurnInput{
				Prompt:   c.String("prompt"),
				Response: response,
				URL:      c.String("url"),
				Platform: turn.Platform(c.String("platform")),
				Folder:   c.String("folder"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List every folder with its saved turns",
		Action: func(c *cli.Context) error {
			output, err := ops.ListFolders(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteTurnCmd creates the delete-turn command.
func deleteTurnCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "delete-turn",
		Usage: "Delete one saved turn by folder and id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"F"}, Required: true, Usage: "Folder holding the turn"},
			&cli.StringFlag{Name: "id", Required: true, Usage: "Turn id"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteTurn(db, ops.DeleteTurnInput{
				Folder: c.String("folder"),
				ID:     c.String("id"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteFolderCmd creates the delete-folder command.
func deleteFolderCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "delete-folder",
		Usage: "Delete a folder and every turn in it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Aliases: []string{"F"}, Required: true, Usage: "Folder to delete"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteFolder(db, ops.DeleteFolderInput{Folder: c.String("folder")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// clearEmptyCmd creates the clear-empty command.
func clearEmptyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clear-empty",
		Usage: "Remove turns whose prompt and response are both empty",
		Action: func(c *cli.Context) error {
			output, err := ops.ClearEmpty(db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cleanCmd creates the clean command.
func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Strip emoji and decorative glyphs from text (reads stdin when no argument)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-copy", Usage: "Print the cleaned text instead of copying to the clipboard"},
		},
		Action: func(c *cli.Context) error {
			selection := strings.Join(c.Args().Slice(), " ")
			if selection == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				selection = text
			}

			output, err := ops.CleanCopy(ops.CleanCopyInput{
				Selection: selection,
				SkipCopy:  c.Bool("no-copy"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("no-copy") {
				fmt.Println(output.Text)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the folder index to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.chatstash/exports/folders-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(db, cfg, baseDir, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a previously exported folder index file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "merge", Usage: "Collision mode: merge|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(db, cfg, baseDir, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch a page snapshot and save each completed response automatically",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Snapshot HTML file to watch (default: configured snapshot path)"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Page address to poll instead of a file"},
			&cli.StringFlag{Name: "folder", Aliases: []string{"F"}, Usage: "Destination folder for saved turns"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := openSource(c, cfg)
			if err != nil {
				return outputError(err)
			}
			defer src.Close()

			bus := msg.NewBus()
			folder := c.String("folder")
			sink := func(pair *turn.CapturedPair) {
				out, err := bus.Send(ctx, msg.TypeSaveChat, msg.SavePayload{
					Prompt:   pair.Prompt,
					Response: pair.Response,
					URL:      pair.URL,
					Platform: pair.Platform,
					Folder:   folder,
				})
				if err != nil {
					log.Printf("save failed: %v", err)
					return
				}
				if saved, ok := out.(*ops.SaveTurnOutput); ok {
					log.Printf("saved %s to %q", saved.ID, saved.Folder)
				}
			}

			sess, err := extract.NewSession(ctx, src, sink, cfg.Debounce(), cfg.ContainerRetry())
			if err != nil {
				return outputError(err)
			}
			defer sess.Close()

			registerWatchHandlers(bus, db, cfg, sess.Capture)
			go bus.Run(ctx)

			log.Printf("watching %s (%s), Ctrl-C to stop", sess.PageURL(), sess.Platform())
			if err := sess.Run(ctx); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// registerWatchHandlers wires every message kind served during a watch
// session onto the bus: manual captures, saves, and clean-copy notices.
func registerWatchHandlers(bus *msg.Bus, db *sql.DB, cfg *config.Config, capture func(ctx context.Context, selection, input string) (*turn.CapturedPair, error)) {
	bus.HandleRequest(msg.TypeCaptureChat, func(ctx context.Context, payload any) (any, error) {
		p, ok := payload.(msg.CapturePayload)
		if !ok {
			return nil, errors.NewInvalidRequest("malformed capture payload")
		}
		return capture(ctx, p.Selection, p.Input)
	})

	bus.HandleRequest(msg.TypeSaveChat, func(_ context.Context, payload any) (any, error) {
		p, ok := payload.(msg.SavePayload)
		if !ok {
			return nil, errors.NewInvalidRequest("malformed save payload")
		}
		return ops.SaveTurn(db, cfg, ops.SaveTurnInput{
			Prompt:   p.Prompt,
			Response: p.Response,
			URL:      p.URL,
			Platform: p.Platform,
			Folder:   p.Folder,
		})
	})

	bus.HandleNotice(msg.TypeCopyCleanSelection, func(payload any) {
		p, ok := payload.(msg.CleanPayload)
		if !ok {
			return
		}
		if _, err := ops.CleanCopy(ops.CleanCopyInput{Selection: p.Selection}); err != nil {
			log.Printf("clean copy failed: %v", err)
		}
	})
}

// openSource picks the snapshot source for watch.
func openSource(c *cli.Context, cfg *config.Config) (extract.Source, error) {
	if pageURL := c.String("url"); pageURL != "" && c.String("file") == "" {
		return extract.NewHTTPSource(pageURL, cfg.PollInterval()), nil
	}

	path := c.String("file")
	if path == "" {
		path = cfg.SnapshotPath
	}
	if path == "" {
		return nil, errors.NewInvalidRequest("either --file, --url, or a configured snapshot path is required")
	}
	return extract.NewFileSource(path, c.String("url"))
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the folders panel in a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := c.String("bind")
			if bind == "" {
				bind = cfg.WebBind
			}
			port := c.Int("port")
			if port == 0 {
				port = cfg.WebPort
			}

			srv := web.NewServer(db, cfg, Version, bind, port)
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if stashErr, ok := err.(*errors.StashError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", stashErr.Code, stashErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
