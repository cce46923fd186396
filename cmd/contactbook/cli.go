package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/contactbook/internal/config"
	"github.com/hpungsan/contactbook/internal/contact"
	"github.com/hpungsan/contactbook/internal/errors"
	"github.com/hpungsan/contactbook/internal/ops"
	"github.com/hpungsan/contactbook/internal/report"
)

// appEnv carries what every command needs. Zero-valued out and now fall
// back to stdout and the wall clock.
type appEnv struct {
	baseDir string
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	now     func() time.Time
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	if env.out == nil {
		env.out = os.Stdout
	}
	if env.now == nil {
		env.now = time.Now
	}

	app := &cli.App{
		Name:    "contactbook",
		Usage:   "Personal contact book",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON book file (overrides config, implies json backend)"},
			&cli.BoolFlag{Name: "verbose", Usage: "Debug logging to stderr"},
		},
		Before: func(c *cli.Context) error {
			if env.logger != nil {
				return nil
			}
			logger, err := newLogger(c.Bool("verbose"))
			if err != nil {
				return err
			}
			env.logger = logger
			return nil
		},
		After: func(_ *cli.Context) error {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			addCmd(env),
			showCmd(env),
			allCmd(env),
			namesCmd(env),
			deleteCmd(env),
			phoneCmd(env),
			birthdayCmd(env),
			emailCmd(env),
			addressCmd(env),
			noteCmd(env),
			tagCmd(env),
			findCmd(env),
			sortByTagCmd(env),
			birthdaysCmd(env),
			saveCmd(env),
			importCmd(env),
			exportCmd(env),
			historyCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// run opens a session, applies fn, commits any change, and prints fn's result.
func (e *appEnv) run(c *cli.Context, fn func(s *ops.Session) (any, error)) error {
	cfg := *e.cfg
	if file := c.String("file"); file != "" {
		cfg.BookPath = file
		cfg.Backend = config.BackendJSON
	}

	s, err := ops.Open(c.Context, &cfg, e.baseDir, e.logger)
	if err != nil {
		return e.fail(err)
	}
	defer s.Close()

	result, err := fn(s)
	if err != nil {
		return e.fail(err)
	}
	if _, err := s.Commit(c.Context); err != nil {
		return e.fail(err)
	}
	if s.Dirty() {
		e.logger.Warn("read-only mode (auto_save is off): changes were not saved")
	}
	return e.outputJSON(result)
}

// addCmd creates the add command.
func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a contact, replacing any contact with the same name",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "phone", Aliases: []string{"p"}, Usage: "10-digit phone (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			name := restArgs(c, 0)
			if strings.TrimSpace(name) == "" {
				return outputError(errors.NewInvalidRequest("NAME is required"))
			}
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.AddContact(ops.AddContactInput{Name: name, Phones: c.StringSlice("phone")})
			})
		},
	}
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one contact",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			name, err := argAt(c, 0, "NAME")
			if err != nil {
				return outputError(err)
			}
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.ShowContact(name)
			})
		},
	}
}

// allCmd creates the all command.
func allCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "all",
		Usage: "List every contact",
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.AllContacts(), nil
			})
		},
	}
}

// namesCmd creates the names command.
func namesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "names",
		Usage: "List contact names",
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.Names(), nil
			})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a contact",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			name, err := argAt(c, 0, "NAME")
			if err != nil {
				return outputError(err)
			}
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.DeleteContact(name)
			})
		},
	}
}

// phoneCmd creates the phone command group.
func phoneCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "phone",
		Usage: "Manage phones",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "NAME PHONE",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "PHONE"}, func(s *ops.Session, a []string) (any, error) {
						return s.AddPhone(a[0], a[1])
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "Replace the phone at INDEX (zero-based)",
				ArgsUsage: "NAME INDEX PHONE",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "INDEX", "PHONE"}, func(s *ops.Session, a []string) (any, error) {
						index, err := parseIndex(a[1])
						if err != nil {
							return nil, err
						}
						return s.EditPhone(a[0], index, a[2])
					})
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "NAME PHONE",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "PHONE"}, func(s *ops.Session, a []string) (any, error) {
						return s.RemovePhone(a[0], a[1])
					})
				},
			},
			{
				Name:      "show",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME"}, func(s *ops.Session, a []string) (any, error) {
						return s.ShowPhones(a[0])
					})
				},
			},
		},
	}
}

// birthdayCmd creates the birthday command group.
func birthdayCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "birthday",
		Usage: "Set or show a birthday (DD.MM.YYYY)",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				ArgsUsage: "NAME DATE",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "DATE"}, func(s *ops.Session, a []string) (any, error) {
						return s.SetBirthday(a[0], a[1])
					})
				},
			},
			{
				Name:      "show",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME"}, func(s *ops.Session, a []string) (any, error) {
						return s.ShowBirthday(a[0])
					})
				},
			},
		},
	}
}

// emailCmd creates the email command group.
func emailCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "email",
		Usage: "Manage the email address",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "NAME EMAIL",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "EMAIL"}, func(s *ops.Session, a []string) (any, error) {
						return s.AddEmail(a[0], a[1])
					})
				},
			},
			{
				Name:      "edit",
				ArgsUsage: "NAME EMAIL",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "EMAIL"}, func(s *ops.Session, a []string) (any, error) {
						return s.EditEmail(a[0], a[1])
					})
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "NAME EMAIL",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "EMAIL"}, func(s *ops.Session, a []string) (any, error) {
						return s.DeleteEmail(a[0], a[1])
					})
				},
			},
		},
	}
}

// addressCmd creates the address command group. Address text may span
// several arguments.
func addressCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Manage addresses",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "NAME ADDRESS...",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "ADDRESS"}, func(s *ops.Session, a []string) (any, error) {
						return s.AddAddress(a[0], restArgs(c, 1))
					})
				},
			},
			{
				Name:      "edit",
				ArgsUsage: "NAME ADDRESS...",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "ADDRESS"}, func(s *ops.Session, a []string) (any, error) {
						return s.EditAddress(a[0], restArgs(c, 1))
					})
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME"}, func(s *ops.Session, a []string) (any, error) {
						return s.DeleteAddress(a[0])
					})
				},
			},
			{
				Name:      "show",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME"}, func(s *ops.Session, a []string) (any, error) {
						return s.ShowAddress(a[0])
					})
				},
			},
		},
	}
}

// noteCmd creates the note command group.
func noteCmd(env *appEnv) *cli.Command {
	tagsFlag := &cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: `Space-separated hashtags, e.g. "#work #urgent"`}
	return &cli.Command{
		Name:  "note",
		Usage: "Manage notes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "NAME TEXT...",
				Flags:     []cli.Flag{tagsFlag},
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "TEXT"}, func(s *ops.Session, a []string) (any, error) {
						return s.AddNote(ops.NoteInput{Name: a[0], Text: restArgs(c, 1), Tags: c.String("tags")})
					})
				},
			},
			{
				Name:      "edit",
				Usage:     "Replace text and tags of the note at INDEX (zero-based)",
				ArgsUsage: "NAME INDEX TEXT...",
				Flags:     []cli.Flag{tagsFlag},
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "INDEX", "TEXT"}, func(s *ops.Session, a []string) (any, error) {
						index, err := parseIndex(a[1])
						if err != nil {
							return nil, err
						}
						return s.EditNote(ops.NoteInput{Name: a[0], Index: index, Text: restArgs(c, 2), Tags: c.String("tags")})
					})
				},
			},
			{
				Name:      "delete",
				ArgsUsage: "NAME INDEX",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "INDEX"}, func(s *ops.Session, a []string) (any, error) {
						index, err := parseIndex(a[1])
						if err != nil {
							return nil, err
						}
						return s.DeleteNote(a[0], index)
					})
				},
			},
		},
	}
}

// tagCmd creates the tag command group.
func tagCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Add or remove a hashtag on one note",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				ArgsUsage: "NAME INDEX TAG",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "INDEX", "TAG"}, func(s *ops.Session, a []string) (any, error) {
						index, err := parseIndex(a[1])
						if err != nil {
							return nil, err
						}
						return s.AddTag(a[0], index, a[2])
					})
				},
			},
			{
				Name:      "remove",
				ArgsUsage: "NAME INDEX TAG",
				Action: func(c *cli.Context) error {
					return env.withArgs(c, []string{"NAME", "INDEX", "TAG"}, func(s *ops.Session, a []string) (any, error) {
						index, err := parseIndex(a[1])
						if err != nil {
							return nil, err
						}
						return s.RemoveTag(a[0], index, a[2])
					})
				},
			},
		},
	}
}

// findCmd creates the find command.
func findCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "find",
		Usage: "Find contacts by exactly one of name, phone, birthday or tag",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Full name, case-insensitive"},
			&cli.StringFlag{Name: "phone", Usage: "Exact phone"},
			&cli.StringFlag{Name: "birthday", Aliases: []string{"b"}, Usage: "Exact birthday (DD.MM.YYYY)"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Exact hashtag, '#' included"},
		},
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.Find(ops.FindInput{
					Name:     c.String("name"),
					Phone:    c.String("phone"),
					Birthday: c.String("birthday"),
					Tag:      c.String("tag"),
				})
			})
		},
	}
}

// sortByTagCmd creates the sort-by-tag command.
func sortByTagCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "sort-by-tag",
		Usage:     "List names of contacts carrying TAG, sorted",
		ArgsUsage: "TAG",
		Action: func(c *cli.Context) error {
			return env.withArgs(c, []string{"TAG"}, func(s *ops.Session, a []string) (any, error) {
				return s.SortByTag(a[0])
			})
		},
	}
}

// birthdaysCmd creates the birthdays command.
func birthdaysCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "birthdays",
		Usage: "Show birthdays in the coming week, grouped by weekday",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "today", Usage: "Reference date (DD.MM.YYYY), default: today"},
			&cli.BoolFlag{Name: "markdown", Usage: "Print a Markdown section instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			today := env.now()
			if raw := c.String("today"); raw != "" {
				bd, err := contact.ParseBirthday(raw)
				if err != nil {
					return outputError(err)
				}
				today = bd.Time()
			}
			if !c.Bool("markdown") {
				return env.run(c, func(s *ops.Session) (any, error) {
					return s.Birthdays(today), nil
				})
			}

			var section string
			err := env.run(c, func(s *ops.Session) (any, error) {
				section = report.Birthdays(s.Birthdays(today).Buckets)
				return nil, nil
			})
			if err != nil {
				return err
			}
			_, err = io.WriteString(env.out, section)
			return err
		},
	}
}

// saveCmd creates the save command.
func saveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save the book (to the configured backend, or as JSON to --path)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Write a JSON copy here instead"},
		},
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.SaveAs(c.Context, c.String("path"))
			})
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the book with the contents of a JSON file",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "JSON file to load"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if path == "" && c.NArg() > 0 {
				path = c.Args().First()
			}
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.Import(path)
			})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the book as markdown, html, yaml or json",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "markdown", Usage: "markdown|html|yaml|json"},
			&cli.StringFlag{Name: "path", Usage: "Output file (default: <export dir>/contacts-<timestamp>.<ext>)"},
		},
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.Export(ops.ExportInput{Format: c.String("format"), Path: c.String("path")})
			})
		},
	}
}

// historyCmd creates the history command.
func historyCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent saves (sqlite backend)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of saves to list"},
		},
		Action: func(c *cli.Context) error {
			return env.run(c, func(s *ops.Session) (any, error) {
				return s.History(c.Context, c.Int("limit"))
			})
		},
	}
}

// Helper functions

// withArgs checks the required positional arguments before opening the session.
func (e *appEnv) withArgs(c *cli.Context, names []string, fn func(s *ops.Session, args []string) (any, error)) error {
	args := make([]string, len(names))
	for i, name := range names {
		v, err := argAt(c, i, name)
		if err != nil {
			return outputError(err)
		}
		args[i] = v
	}
	return e.run(c, func(s *ops.Session) (any, error) {
		return fn(s, args)
	})
}

// argAt returns the positional argument at i or an INVALID_REQUEST naming it.
func argAt(c *cli.Context, i int, what string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", errors.NewInvalidRequest(fmt.Sprintf("%s is required", what))
	}
	return v, nil
}

// restArgs joins the positional arguments from i onward with single spaces.
func restArgs(c *cli.Context, from int) string {
	args := c.Args().Slice()
	if from >= len(args) {
		return ""
	}
	return strings.Join(args[from:], " ")
}

// parseIndex parses a zero-based index argument.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("index must be an integer, got %q", s))
	}
	return n, nil
}

// outputJSON marshals result to the app's output as JSON.
func (e *appEnv) outputJSON(v any) error {
	if v == nil {
		return nil
	}
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// fail logs errors outside the contact taxonomy before formatting them.
func (e *appEnv) fail(err error) error {
	if !errors.Recoverable(err) && e.logger != nil {
		e.logger.Error("command failed", zap.Error(err))
	}
	return outputError(err)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.ContactError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
