package cli

import (
	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db"
	"github.com/sweetshop/sweetshop-api/internal/server"
)

var skipMigrate bool

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Pending schema migrations are applied first
unless --skip-migrate is given. Usage:

	sweetshop serve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !skipMigrate {
			if err := db.MigrateUp(ctx, cfg); err != nil {
				return err
			}
		}

		srv, err := server.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")
}
