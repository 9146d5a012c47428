// Command ledgerctl runs the leave ledger batch jobs once, outside the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teamzen/hris-backend-go/internal/app"
	"github.com/teamzen/hris-backend-go/internal/config"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	leaveService "github.com/teamzen/hris-backend-go/internal/service/leave"
	"go.uber.org/zap"
)

const (
	flagDatabaseURL      = "database-url"
	flagBackend          = "backend"
	configKeyDatabaseURL = "database_url"
	configKeyBackend     = "backend"
	defaultDatabaseURL   = "sqlite://teamzen.db"
)

type runtimeConfig struct {
	DatabaseURL string
	Backend     string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Leave ledger batch operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v, cfg)
		},
	}

	cmd.PersistentFlags().String(flagDatabaseURL, defaultDatabaseURL, "postgres:// or sqlite:// connection string")
	cmd.PersistentFlags().String(flagBackend, config.BackendGorm, "repository backend: gorm or pgx")

	cmd.AddCommand(
		newAccrueCommand(cfg),
		newCarryForwardCommand(cfg),
		newInitBalancesCommand(cfg),
	)
	return cmd
}

func loadConfig(cmd *cobra.Command, v *viper.Viper, cfg *runtimeConfig) error {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(configKeyDatabaseURL, "DATABASE_URL"); err != nil {
		return err
	}
	if err := v.BindEnv(configKeyBackend, "LEAVE_BACKEND"); err != nil {
		return err
	}
	if err := v.BindPFlag(configKeyDatabaseURL, cmd.Flags().Lookup(flagDatabaseURL)); err != nil {
		return err
	}
	if err := v.BindPFlag(configKeyBackend, cmd.Flags().Lookup(flagBackend)); err != nil {
		return err
	}

	cfg.DatabaseURL = v.GetString(configKeyDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	cfg.Backend = strings.ToLower(v.GetString(configKeyBackend))

	switch cfg.Backend {
	case config.BackendGorm:
	case config.BackendPgx:
		if driver, _, err := database.ResolveDriver(cfg.DatabaseURL); err != nil || driver != database.DriverPostgres {
			return fmt.Errorf("backend pgx requires a postgres:// database url")
		}
	default:
		return fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
	return nil
}

func newAccrueCommand(cfg *runtimeConfig) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "accrue",
		Short: "Credit the current accrual period to every incremental balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				today = parsed
			}

			return withLedger(cmd, cfg, func(ctx context.Context, svc *leaveService.LeaveServiceImpl, logger *zap.Logger) error {
				report, err := svc.RunAccrual(ctx, today)
				if err != nil {
					return err
				}
				logger.Info("accrual finished",
					zap.String("date", report.Date.Format(time.DateOnly)),
					zap.Int("scanned", report.Scanned),
					zap.Int("accrued", report.Accrued),
					zap.Int("failed", report.Failed),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "accrued=%d skipped=%d locked=%d failed=%d\n",
					report.Accrued, report.Skipped, report.Locked, report.Failed)
				if report.Failed > 0 {
					return fmt.Errorf("%d balances failed to accrue", report.Failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "accrual date, YYYY-MM-DD (default today)")
	return cmd
}

func newCarryForwardCommand(cfg *runtimeConfig) *cobra.Command {
	var fromYear int
	cmd := &cobra.Command{
		Use:   "carry-forward",
		Short: "Move unused days of --from-year into the following year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, cfg, func(ctx context.Context, svc *leaveService.LeaveServiceImpl, logger *zap.Logger) error {
				report, err := svc.ApplyCarryForward(ctx, fromYear)
				if err != nil {
					return err
				}
				logger.Info("carry forward finished",
					zap.Int("from_year", report.FromYear),
					zap.Int("applied", report.Applied),
					zap.String("days", report.TotalDays.String()),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "applied=%d skipped=%d failed=%d days=%s\n",
					report.Applied, report.Skipped, report.Failed, report.TotalDays.StringFixed(2))
				if report.Failed > 0 {
					return fmt.Errorf("%d balances failed to carry forward", report.Failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&fromYear, "from-year", 0, "year whose balances are carried forward")
	_ = cmd.MarkFlagRequired("from-year")
	return cmd
}

func newInitBalancesCommand(cfg *runtimeConfig) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "init-balances",
		Short: "Open --year balances for every active user and leave type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, cfg, func(ctx context.Context, svc *leaveService.LeaveServiceImpl, logger *zap.Logger) error {
				created, err := svc.InitializeBalancesForYear(ctx, year)
				if err != nil {
					return err
				}
				logger.Info("balances initialized", zap.Int("year", year), zap.Int("created", created))
				fmt.Fprintf(cmd.OutOrStdout(), "created=%d\n", created)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "balance year to open")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

// withLedger opens the backend and runs fn with a leave service logging through zap.
func withLedger(cmd *cobra.Command, cfg *runtimeConfig, fn func(ctx context.Context, svc *leaveService.LeaveServiceImpl, logger *zap.Logger) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var (
		repos   app.Repositories
		closeDB func()
	)
	switch cfg.Backend {
	case config.BackendPgx:
		repos, closeDB, err = app.OpenPgx(ctx, cfg.DatabaseURL)
	default:
		repos, closeDB, err = app.OpenGorm(ctx, cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer closeDB()

	services := app.NewServices(repos, nil,
		leaveService.WithOperationLogger(leaveService.NewZapOperationLogger(logger)),
	)

	logger.Info("ledgerctl starting", zap.String("command", cmd.Name()), zap.String("backend", cfg.Backend))
	return fn(ctx, services.Leave, logger)
}
