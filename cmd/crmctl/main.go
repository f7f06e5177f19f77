// Command crmctl runs maintenance tasks against the CRM database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type env struct {
	db  *sqlx.DB
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var e env

	root := &cobra.Command{
		Use:          "crmctl",
		Short:        "Maintenance commands for the CRM",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if e.log, err = logger.New(cfg.Logger); err != nil {
				return err
			}
			e.db, err = database.NewDBConnection(cfg.Database, e.log)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.db != nil {
				e.db.Close()
			}
			if e.log != nil {
				e.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")

	root.AddCommand(newMigrateCmd(&e), newSeedRolesCmd(&e), newStatsCmd(&e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	var version uint
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(*cobra.Command, []string) error {
			return database.Migrate(e.db.DB, e.log, version)
		},
	}
	cmd.Flags().UintVar(&version, "version", 0, "target version (0 applies all)")
	return cmd
}

func newSeedRolesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Create the built-in roles and grant their permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := database.NewRoleRepository(e.db, database.NewTxManager(e.db, e.log), e.log)
			return usecase.NewRoleUseCase(repo, e.log).SeedDefaults(cmd.Context())
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per campaign and overall statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := usecase.NewStatisticsUseCase(
				database.NewStatisticsRepository(e.db),
				database.NewAdvertisingRepository(e.db),
				e.log,
			)
			return printStats(cmd.Context(), cmd.OutOrStdout(), uc, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printStats(ctx context.Context, w io.Writer, uc *usecase.StatisticsUseCase, asJSON bool) error {
	ads, err := uc.AdsStatistics(ctx)
	if err != nil {
		return err
	}
	totals, err := uc.TotalStatistics(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"ads": ads, "total": totals})
	}

	fmt.Fprintf(w, "%-30s %8s %10s %12s\n", "CAMPAIGN", "LEADS", "CUSTOMERS", "PROFIT")
	for _, a := range ads {
		fmt.Fprintf(w, "%-30s %8d %10d %12s\n", a.Name, a.LeadsCount, a.CustomersCount, a.Profit.StringFixed(2))
	}
	fmt.Fprintf(w, "\nservices: %d  advertisements: %d  leads: %d  customers: %d\n",
		totals.ProductsCount, totals.AdvertisementsCount, totals.LeadsCount, totals.CustomersCount)
	return nil
}
