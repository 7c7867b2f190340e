package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"gizmo/internal/domain"
	fxmodules "gizmo/internal/fx"
	"gizmo/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var verbose bool

var errNotFound = errors.New("player not found")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gizmo",
		Short:         "Rocket League player lookups against ballchasing.com",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr while searching")

	lookupCmd := &cobra.Command{
		Use:               "lookup <target>",
		Short:             "Resolve a player and print their current settings",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              runLookup,
	}
	deepCmd := &cobra.Command{
		Use:               "deep <target>",
		Short:             "Resolve a player and aggregate their whole replay history",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE:              runDeep,
	}

	rootCmd.AddCommand(lookupCmd, deepCmd)
	return rootCmd
}

func main() {
	if err := run(); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		logger.Error().Err(err).Msg("gizmo failed")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func runLookup(cmd *cobra.Command, args []string) error {
	return withSearch(func(search *service.SearchService) error {
		result, err := search.Lookup(cmd.Context(), args[0])
		if err != nil {
			return explain(err)
		}
		return printJSON(cmd, result)
	})
}

func runDeep(cmd *cobra.Command, args []string) error {
	return withSearch(func(search *service.SearchService) error {
		result, err := search.Deep(cmd.Context(), args[0])
		if err != nil {
			return explain(err)
		}
		return printJSON(cmd, result)
	})
}

// withSearch builds the search stack without the audit database and hands it to fn.
func withSearch(fn func(*service.SearchService) error) error {
	var search *service.SearchService

	app := fx.New(
		fx.NopLogger,
		fxmodules.ServicesModule,
		fx.Provide(func() service.SearchRecorder { return service.NopRecorder{} }),
		fx.Decorate(func(l zerolog.Logger) zerolog.Logger {
			if !verbose {
				return zerolog.Nop()
			}
			return l.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}),
		fx.Populate(&search),
	)
	if err := app.Err(); err != nil {
		return err
	}
	return fn(search)
}

func explain(err error) error {
	if domain.IsNotFound(err) {
		return errors.Join(errNotFound, err)
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
