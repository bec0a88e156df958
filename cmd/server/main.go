// Package main implements the entry point for the hotel listing API server:
// the HTTP service, schema migrations and account administration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/hotel-listing-api/internal/config"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/logger"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/service"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute())
}

// execute runs the root command and returns the process exit code.
func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "hotel-listing-api",
		Short:         "Hotel listing catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default ./config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newUserCmd(&configPath),
	)
	return rootCmd
}

func newServeCmd(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}

			db, dialect, err := sqldb.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}

			if migrate {
				if err := sqldb.Migrate(ctx, db, dialect, "up", log); err != nil {
					_ = db.Close()
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
			}

			app, err := newApplication(ctx, cfg, log, db, dialect)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|reset|status|version}",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "reset", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}

			db, dialect, err := sqldb.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := sqldb.Migrate(ctx, db, dialect, args[0], log); err != nil {
				return err
			}

			version, err := sqldb.CurrentVersion(ctx, db, dialect)
			if err != nil {
				return err
			}
			log.Info("schema version", slog.Int64("version", version), slog.String("dialect", dialect.Name))
			return nil
		},
	}
}

func newUserCmd(configPath *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		req   service.RegisterRequest
		roles []string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account, optionally with the Administrator role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}

			for _, role := range roles {
				if role != domain.RoleUser && role != domain.RoleAdministrator {
					return fmt.Errorf("unknown role %q", role)
				}
			}

			db, dialect, err := sqldb.Open(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			accounts, err := newAccountService(cfg, log, db, dialect)
			if err != nil {
				return err
			}

			principal, err := accounts.Register(ctx, req, roles...)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) roles=%v\n",
				principal.UserName, principal.ID, principal.Roles)
			return err
		},
	}
	createCmd.Flags().StringVar(&req.Email, "email", "", "Email address, also the user name")
	createCmd.Flags().StringVar(&req.Password, "password", "", "Password")
	createCmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	createCmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	createCmd.Flags().StringSliceVar(&roles, "role", nil, "Role to grant (User, Administrator); repeatable")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

// loadAppConfig loads configuration and installs the structured logger.
func loadAppConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("refresh_store", cfg.Auth.RefreshStore))
	return cfg, log, nil
}
