package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/repository"
	"github.com/Hasan197668/nis/internal/service"
	"github.com/Hasan197668/nis/migrator/postgres"
	"github.com/Hasan197668/nis/pkg/config"
	"github.com/Hasan197668/nis/pkg/database"
	"github.com/Hasan197668/nis/pkg/logger"
)

// app carries the resources opened for a single command run.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "nisctl",
		Short:         "Administration tool for the substitute planning service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCommand(), newImportCommand(), newHistoryCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := postgres.Migrate(a.db.DB); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(a.out, "migrations applied")
				return nil
			})
		},
	}
}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a weekly table from an xlsx workbook",
	}
	cmd.AddCommand(
		newImportFileCommand("timetable", "Import the weekly lesson timetable", (*service.TableService).ImportTimetable),
		newImportFileCommand("duty", "Import the weekly duty table", (*service.TableService).ImportDuties),
	)
	return cmd
}

type importFunc func(*service.TableService, context.Context, io.Reader) (*dto.TableWriteResponse, error)

func newImportFileCommand(use, short string, run importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file.xlsx>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(cmd, func(a *app) error {
				tables := service.NewTableService(
					repository.NewTimetableRepository(a.db),
					repository.NewDutyRepository(a.db),
					repository.NewBaselineRepository(a.db),
					nil, nil, a.logger,
				)
				result, err := run(tables, cmd.Context(), f)
				if err != nil {
					return err
				}
				return printJSON(a.out, result)
			})
		},
	}
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the substitution history",
	}
	var confirm bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every substitution history record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to reset history without --yes")
			}
			return withApp(cmd, func(a *app) error {
				history := service.NewHistoryService(repository.NewHistoryRepository(a.db), nil, nil, a.logger, 0)
				removed, err := history.Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "removed %d records\n", removed)
				return nil
			})
		},
	}
	reset.Flags().BoolVar(&confirm, "yes", false, "confirm the reset")
	cmd.AddCommand(reset)
	return cmd
}

func withApp(cmd *cobra.Command, fn func(*app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	return fn(&app{cfg: cfg, logger: logr, db: db, out: cmd.OutOrStdout()})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
