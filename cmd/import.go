package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/store/sqlstore"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import catalog items, preset images and measurements from a yaml file",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			a.fatal("opening the seed file", err)
		}
		defer f.Close()

		seed, err := sqlstore.LoadSeed(f)
		if err != nil {
			a.fatal("reading the seed file", err)
		}

		summary, err := a.store.Import(ctx, seed)
		if err != nil {
			a.fatal("importing the seed file", err)
		}

		if a.cache != nil {
			ids := make([]string, len(seed.Items))
			for i, item := range seed.Items {
				ids[i] = item.ID
			}
			a.cache.Invalidate(ctx, ids...)
		}

		a.logger.Info("import finished",
			zap.String("file", args[0]),
			zap.Int("items", summary.Items),
			zap.Int("preset_images", summary.PresetImages),
			zap.Int("measurements", summary.Measurements),
		)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
