package cli

import (
	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db"
)

var downSteps int

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateUp(cmd.Context(), cfg); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("schema up to date")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.MigrateDown(cfg, downSteps); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.Store.Driver).Int("steps", downSteps).Msg("migrations rolled back")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
}
