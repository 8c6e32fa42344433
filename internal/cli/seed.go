package cli

import (
	"github.com/spf13/cobra"

	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db"
	"github.com/sweetshop/sweetshop-api/internal/seed"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default catalogue into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(ctx) }()

		_, err = seed.Catalog(ctx, store.Sweets, log)
		return err
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
