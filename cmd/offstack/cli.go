package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/offstack/offstack/internal/capture"
	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/errors"
	"github.com/offstack/offstack/internal/ops"
	"github.com/offstack/offstack/internal/snippet"
	"github.com/offstack/offstack/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "offstack",
		Usage:   "Local snippet store with full-text search",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db, cfg),
			getCmd(db),
			updateCmd(db, cfg),
			deleteCmd(db),
			listCmd(db),
			searchCmd(db),
			captureCmd(db, cfg),
			reindexCmd(db),
			exportCmd(db, baseDir),
			importCmd(db),
			uiCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Store a new snippet (reads code from stdin unless --code is given)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Snippet title"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Required: true, Usage: "Language tag"},
			&cli.StringFlag{Name: "code", Usage: "Snippet body (otherwise piped via stdin)"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Markdown note"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "folder", Usage: "Folder id"},
		},
		Action: func(c *cli.Context) error {
			code := c.String("code")
			if code == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewStorage(err))
				}
				code = text
			}

			input := ops.CreateInput{
				Title:    c.String("title"),
				Code:     code,
				Language: c.String("language"),
				Tags:     parseTags(c.String("tags")),
			}
			if desc := c.String("description"); desc != "" {
				input.Description = &desc
			}
			if folder := c.String("folder"); folder != "" {
				input.FolderID = &folder
			}

			output, err := ops.Create(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a snippet by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, db, ops.GetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Partially update a snippet (optionally reads new code from stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "New language tag"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New markdown note"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags (replaces old list)"},
			&cli.StringFlag{Name: "folder", Usage: "New folder id"},
			&cli.BoolFlag{Name: "favorite", Usage: "Set the favorite flag"},
			&cli.BoolFlag{Name: "no-favorite", Usage: "Clear the favorite flag"},
		},
		Action: func(c *cli.Context) error {
			var patch snippet.UpdateInput

			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewStorage(err))
				}
				patch.Code = &text
			}
			if c.IsSet("title") {
				title := c.String("title")
				patch.Title = &title
			}
			if c.IsSet("language") {
				language := c.String("language")
				patch.Language = &language
			}
			if c.IsSet("description") {
				desc := c.String("description")
				patch.Description = &desc
			}
			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				patch.Tags = &tags
			}
			if c.IsSet("folder") {
				folder := c.String("folder")
				patch.FolderID = &folder
			}
			if c.Bool("favorite") {
				v := true
				patch.IsFavorite = &v
			} else if c.Bool("no-favorite") {
				v := false
				patch.IsFavorite = &v
			}

			output, err := ops.Update(c.Context, db, cfg, ops.UpdateInput{
				ID:    c.Args().First(),
				Patch: patch,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a snippet",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: c.Args().First()})
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
		Usage: "List snippets, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number (1-based)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Items per page"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Page:  c.Int("page"),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search over titles, code, and descriptions",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSearchLimit, Usage: "Maximum results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// captureCmd creates the capture command.
func captureCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Ingest a capture payload (JSON on stdin, or raw text with --text)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "Raw captured text (bypasses JSON payload parsing)"},
			&cli.BoolFlag{Name: "code", Usage: "Treat --text as code"},
			&cli.StringFlag{Name: "source-app", Usage: "Application the text came from"},
		},
		Action: func(c *cli.Context) error {
			var stored *snippet.Snippet
			var reason string
			in := &capture.Ingestor{
				DB:        db,
				Cfg:       cfg,
				OnSnippet: func(s *snippet.Snippet) { stored = s },
				OnError:   func(r string) { reason = r },
			}

			if text := c.String("text"); text != "" {
				payload := capture.Payload{Text: text, IsCode: c.Bool("code")}
				if app := c.String("source-app"); app != "" {
					payload.SourceApp = &app
				}
				in.Ingest(c.Context, payload)
			} else {
				if !stdinHasData() {
					return outputError(errors.NewInvalidArgument("capture payload must be piped via stdin or given with --text"))
				}
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return outputError(errors.NewStorage(err))
				}
				in.IngestJSON(c.Context, data)
			}

			if stored == nil {
				return outputError(errors.NewValidation(reason))
			}
			return outputJSON(ops.CreateOutput{Snippet: stored})
		},
	}
}

// reindexCmd creates the reindex command.
func reindexCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Rebuild the full-text index and clear stale flags",
		Action: func(c *cli.Context) error {
			output, err := ops.Reindex(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all snippets to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: exports directory in the store)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, ops.ExportInput{
				Path:    c.String("path"),
				BaseDir: baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import snippets from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "skip", Usage: "Collision mode: skip|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, ops.ImportInput{
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

// uiCmd creates the ui command.
func uiCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 7420, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
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
	if typed, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", typed.Code, typed.Message), 1)
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

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
