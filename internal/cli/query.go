package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

// wordCommand builds a one-shot command that runs a single-argument query.
func wordCommand(app *App, use, short string, run func(*session, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireFiles(); err != nil {
				return err
			}
			svc, err := app.open(cmd.Context(), "cli", app.files)
			if err != nil {
				return err
			}
			defer svc.Close()
			return run(newSession(svc, cmd.OutOrStdout()), cmd.Context(), args[0])
		},
	}
}

func advancedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "advanced <word>...",
		Short:   "List files containing every given word.",
		Example: "trie-search advanced running garden -f a.txt -f b.txt",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireFiles(); err != nil {
				return err
			}
			svc, err := app.open(cmd.Context(), "cli", app.files)
			if err != nil {
				return err
			}
			defer svc.Close()
			return newSession(svc, cmd.OutOrStdout()).advanced(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func nearCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "near <word1> <word2> <distance>",
		Short:   "List files where two words occur within a distance of each other.",
		Example: "trie-search near cat garden 3 -f story.txt",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			distance, err := strconv.Atoi(args[2])
			if err != nil || distance < 0 {
				return apperrors.Newf(apperrors.ErrInvalidInput,
					"distance must be a non-negative integer, got %q", args[2])
			}
			if err := app.requireFiles(); err != nil {
				return err
			}
			svc, err := app.open(cmd.Context(), "cli", app.files)
			if err != nil {
				return err
			}
			defer svc.Close()
			return newSession(svc, cmd.OutOrStdout()).proximity(cmd.Context(), args[0], args[1], distance)
		},
	}
}

// historyCommand is only useful with a persistent history backend.
func historyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recorded queries, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.open(cmd.Context(), "cli", nil)
			if err != nil {
				return err
			}
			defer svc.Close()
			return newSession(svc, cmd.OutOrStdout()).showHistory(cmd.Context())
		},
	}
}

func replCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [file]...",
		Short: "Index files and open the interactive menu.",
		Long: heredoc.Doc(`
			Index the given files (or the ones named by --file, or prompted for when
			neither is given) and open a numbered menu offering every query, the
			search history and result export.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			paths := append(append([]string{}, app.files...), args...)

			svc, err := openServices(ctx, app.cfg, app.Registerer, "repl")
			if err != nil {
				return err
			}
			defer svc.Close()

			r := newREPL(newSession(svc, out), cmd.InOrStdin())
			fmt.Fprintln(out, "==== Trie Search ====")
			if len(paths) == 0 {
				if paths, err = r.askFiles(); err != nil {
					return r.finish(err)
				}
			}
			results, err := svc.load(ctx, paths)
			if err != nil {
				return err
			}
			reportLoad(out, results)
			return r.run(ctx)
		},
	}
}
