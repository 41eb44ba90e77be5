package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passkeeper/internal/server/services"
	"github.com/spf13/cobra"
)

// repoManager is what keeperctl needs from the repository layer.
type repoManager interface {
	repomanager.RepositoryManager
	MigrationStatus(context.Context, *sql.DB) error
}

// openDB and newRepoManager are seams for tests.
var (
	openDB = func(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
		return dbx.OpenPostgres(ctx, cfg.DatabaseDSN, cfg.MaxOpenConns, cfg.ConnMaxLifetime)
	}
	newRepoManager = func() repoManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

// env is the state shared by every subcommand once the root pre-run hook
// has loaded the configuration and opened the database.
type env struct {
	cfg        *config.Config
	log        logging.Logger
	db         *sql.DB
	rm         repoManager
	accounts   *services.AccountService
	categories *services.CategoryService

	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
}

func newEnv(out, errOut io.Writer, in io.Reader) *env {
	return &env{out: out, errOut: errOut, in: bufio.NewReader(in)}
}

// newRootCmd builds the keeperctl command tree over e. The database opened
// by the pre-run hook stays open until e.close.
func newRootCmd(e *env) *cobra.Command {
	var (
		cfgFile   string
		dsn       string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:           "keeperctl",
		Short:         "Administer a passkeeper database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &config.Config{}
			cfg.LoadDefaults()
			cfg.LogFormat = "text"
			if cfgFile != "" {
				if err := config.ApplyJSONFile(cfg, cfgFile); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("dsn") {
				cfg.DatabaseDSN = dsn
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			return e.open(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "JSON config file")
	cmd.PersistentFlags().StringVarP(&dsn, "dsn", "d", "", "PostgreSQL DSN (overrides the config file)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	cmd.AddCommand(migrateCmd(e))
	cmd.AddCommand(statsCmd(e))
	cmd.AddCommand(categoriesCmd(e))
	cmd.AddCommand(accountsCmd(e))
	cmd.AddCommand(reencryptCmd(e))

	return cmd
}

func (e *env) open(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	e.cfg = cfg
	e.log = logging.New(logOut, cfg.LogLevel, cfg.LogFormat)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	e.db = db
	e.rm = newRepoManager()
	e.accounts = services.NewAccountService(db, e.rm, e.log)
	e.categories = services.NewCategoryService(db, e.rm, e.log)
	return nil
}

func (e *env) close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// Execute runs keeperctl with args. Results go to out; prompts and logs go
// to errOut; interactive answers are read from in.
func Execute(ctx context.Context, args []string, out, errOut io.Writer, in io.Reader) error {
	e := newEnv(out, errOut, in)
	cmd := newRootCmd(e)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if cerr := e.close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close database: %w", cerr)
	}
	return err
}
