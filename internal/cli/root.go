// Package cli implements the trie-search command line: one-shot query
// commands, the interactive menu, the HTTP query service and the analytics
// consumer.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/logger"
)

// App carries the streams and state shared by all commands.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Registerer receives the Prometheus collectors. Nil means the default
	// registry.
	Registerer prometheus.Registerer

	configPath string
	files      []string
	cfg        *config.Config
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "trie-search",
		Short: "Index text files into a trie and query them.",
		Long: heredoc.Doc(`
			trie-search builds an in-memory trie index over a set of text files and
			answers exact, prefix, conjunctive, fuzzy and proximity queries against it.
		`),
		Example: heredoc.Doc(`
			trie-search search running -f notes.txt -f todo.txt
			trie-search near cat garden 3 -f story.txt
			trie-search repl story.txt
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.configPath)
			if err != nil {
				return err
			}
			app.cfg = cfg
			logger.Install(app.Err, cfg.Logging)
			return nil
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringSliceVarP(&app.files, "file", "f", nil, "file to index (repeatable)")

	root.AddCommand(
		wordCommand(app, "search <word>", "Look up a word and show its total count.", (*session).searchWord),
		wordCommand(app, "details <word>", "Show per-file occurrence counts of a word.", (*session).details),
		wordCommand(app, "complete <prefix>", "List indexed terms starting with a prefix.", (*session).autocomplete),
		wordCommand(app, "partial <fragment>", "List indexed terms starting with a fragment.", (*session).partial),
		wordCommand(app, "spell <word>", "Suggest indexed terms close to a word.", (*session).spell),
		advancedCommand(app),
		nearCommand(app),
		historyCommand(app),
		replCommand(app),
		serveCommand(app),
		analyticsCommand(app),
	)
	return root
}

// Execute runs the command line against the process streams.
func Execute() {
	app := &App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(app.Err, "Error: %v\n", err)
		stop()
		os.Exit(apperrors.ExitCode(err))
	}
}

// open builds the services and indexes paths, reporting unreadable files on
// the error stream.
func (a *App) open(ctx context.Context, source string, paths []string) (*services, error) {
	svc, err := openServices(ctx, a.cfg, a.Registerer, source)
	if err != nil {
		return nil, err
	}
	results, err := svc.load(ctx, paths)
	if err != nil {
		svc.Close()
		return nil, err
	}
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(a.Err, "Error opening file: %s\n", res.Path)
		}
	}
	return svc, nil
}

func (a *App) requireFiles() error {
	if len(a.files) == 0 {
		return apperrors.New(apperrors.ErrInvalidInput, "no files to index: pass at least one --file")
	}
	return nil
}
