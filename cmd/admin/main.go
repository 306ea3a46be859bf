package main

import (
	"fmt"
	"os"
	"time"

	"case_flow_app_go/config"
	"case_flow_app_go/db"
	"case_flow_app_go/logging"
	"case_flow_app_go/models"
	"case_flow_app_go/services"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "admin",
		Short:        "Case Flow operator commands",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openDatabase(); err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(models.All()))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var cases int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo cases with communications and files",
		Long:  "Migrates the schema, then inserts demo data. Does nothing when cases already exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, cases)
		},
	}

	cmd.Flags().IntVar(&cases, "cases", services.DefaultSeedCases, "number of demo cases to create")
	return cmd
}

func runSeed(cmd *cobra.Command, cases int) error {
	if err := openDatabase(); err != nil {
		return err
	}
	defer db.Close()

	summary, err := services.SeedDemoData(cmd.Context(), db.DB, cases, time.Now())
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}

	out := cmd.OutOrStdout()
	if summary.Skipped {
		fmt.Fprintln(out, "Cases already exist, nothing seeded")
		return nil
	}
	fmt.Fprintf(out, "Seeded %d cases, %d emails, %d text messages, %d files, %d actions\n",
		summary.Cases, summary.Emails, summary.TextMessages, summary.Files, summary.ReasonChains)
	return nil
}

// openDatabase connects with the server's configuration and migrates every model
func openDatabase() error {
	cfg := config.Load()
	if _, err := logging.Init(cfg.Environment, cfg.LogLevel); err != nil {
		return err
	}

	if err := db.Initialize(cfg); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		db.Close()
		return err
	}
	return nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
