// Package cli holds the sweetshop command tree.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop-api/internal/infrastructure/config"
	"github.com/sweetshop/sweetshop-api/pkg/logger"
)

const serviceName = "sweetshop"

var (
	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sweetshop",
	Short:         "Sweet Shop inventory service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Service: serviceName,
		})
		return nil
	},
}

// Root returns the command tree so main can execute it with a context.
func Root() *cobra.Command {
	return rootCmd
}
