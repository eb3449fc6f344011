package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/catalog/pkg/client"
	"github.com/shishobooks/catalog/pkg/tui"
	"github.com/shishobooks/catalog/pkg/version"
	"github.com/spf13/viper"
)

const (
	defaultServer = "http://localhost:5000"
	envPrefix     = "CATALOG"
)

var runUI = func(api tui.BookAPI) error {
	return tui.Run(api)
}

// CLI is the command structure of the catalog client.
type CLI struct {
	Config  string        `help:"Path to a config file (defaults to ./catalog.yaml or ~/.config/catalog/catalog.yaml)" type:"path"`
	Server  string        `help:"Base URL of the catalog API (overrides config and CATALOG_SERVER)"`
	Timeout time.Duration `help:"Request timeout (overrides config and CATALOG_TIMEOUT)"`
	Verbose bool          `short:"v" help:"Log debug output"`

	UI      UICmd      `cmd:"" default:"1" help:"Browse and edit the catalog interactively"`
	List    ListCmd    `cmd:"" help:"List every book, newest first"`
	Add     AddCmd     `cmd:"" help:"Add a book"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a book by id"`
	Version VersionCmd `cmd:"" help:"Print the client version"`
}

type UICmd struct{}

type ListCmd struct {
	JSON bool `help:"Print the books as JSON"`
}

type AddCmd struct {
	Title  string `short:"t" help:"Book title" required:""`
	Author string `short:"a" help:"Author name" required:""`
	ISBN   string `short:"i" name:"isbn" help:"ISBN number" required:""`
	Year   int    `short:"y" help:"Publication year" required:""`
}

type DeleteCmd struct {
	ID string `arg:"" help:"Id of the book to delete"`
}

type VersionCmd struct{}

// app carries what every command needs once flags and config are resolved.
type app struct {
	ctx context.Context
	api *client.Client
	out io.Writer
	now func() time.Time
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("catalog"),
		kong.Description("A client for the Smart Library System API."),
		kong.UsageOnError(),
	}, options...)
	parser, err := kong.New(cli, options...)
	return parser, errors.WithStack(err)
}

// Execute parses the command line and runs the selected command.
func Execute() {
	initLogging(false)

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		slog.Error("Failed to build command line parser", "error", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := run(ctx, &cli, os.Stdout); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx *kong.Context, cli *CLI, out io.Writer) error {
	if cli.Verbose {
		initLogging(true)
	}

	v, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	server := cli.Server
	if server == "" {
		server = v.GetString("server")
	}
	timeout := cli.Timeout
	if timeout <= 0 {
		timeout = v.GetDuration("timeout")
	}

	api, err := client.New(server, client.WithTimeout(timeout))
	if err != nil {
		return err
	}
	slog.Debug("Using catalog API", "server", server, "timeout", timeout)

	return ctx.Run(&app{ctx: context.Background(), api: api, out: out, now: time.Now})
}

func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("server", defaultServer)
	v.SetDefault("timeout", client.DefaultTimeout)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/catalog")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			slog.Debug("No config file found, using defaults")
			return v, nil
		}
		return nil, errors.Wrap(err, "failed to read config")
	}
	slog.Debug("Loaded config", "file", v.ConfigFileUsed())
	return v, nil
}

func (*UICmd) Run(a *app) error {
	return runUI(a.api)
}

func (l *ListCmd) Run(a *app) error {
	books, err := a.api.ListBooks(a.ctx)
	if err != nil {
		return err
	}

	if l.JSON {
		data, err := json.MarshalIndent(books, "", "  ")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = fmt.Fprintln(a.out, string(data))
		return errors.WithStack(err)
	}

	if len(books) == 0 {
		_, err = fmt.Fprintln(a.out, "No books in the library yet")
		return errors.WithStack(err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tISBN\tYEAR")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.ISBN, b.Year)
	}
	return errors.WithStack(w.Flush())
}

func (c *AddCmd) Run(a *app) error {
	book, err := tui.ValidateForm(c.Title, c.Author, c.ISBN, strconv.Itoa(c.Year), a.now())
	if err != nil {
		return err
	}

	created, err := a.api.CreateBook(a.ctx, book)
	if err != nil {
		return err
	}
	slog.Debug("Created book", "id", created.ID, "isbn", created.ISBN)

	_, err = fmt.Fprintf(a.out, "Book added successfully! %s (%s)\n", created.Title, created.ID)
	return errors.WithStack(err)
}

func (c *DeleteCmd) Run(a *app) error {
	result, err := a.api.DeleteBook(a.ctx, c.ID)
	if err != nil {
		return err
	}

	if result.Book != nil {
		_, err = fmt.Fprintf(a.out, "%s: %s (%s)\n", result.Message, result.Book.Title, result.Book.ID)
	} else {
		_, err = fmt.Fprintln(a.out, result.Message)
	}
	return errors.WithStack(err)
}

func (*VersionCmd) Run(a *app) error {
	_, err := fmt.Fprintln(a.out, version.Version)
	return errors.WithStack(err)
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
