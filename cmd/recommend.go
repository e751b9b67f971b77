package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the best size of one or more clothing items for a user",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")
		clothingIDs, _ := cmd.Flags().GetStringArray("clothing")

		service := a.recommendService()

		if len(clothingIDs) == 1 {
			result, err := service.Recommend(ctx, userID, clothingIDs[0])
			if err != nil {
				a.fatal("recommending a size", err)
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				a.fatal("printing the recommendation", err)
			}
			return
		}

		items, err := service.RecommendBulk(ctx, userID, clothingIDs)
		if err != nil {
			a.fatal("recommending sizes", err)
		}
		a.logger.Debug("bulk recommendation done", zap.Int("requested", len(clothingIDs)), zap.Int("found", len(items)))
		if err := printJSON(cmd.OutOrStdout(), items); err != nil {
			a.fatal("printing the recommendations", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("user", "u", "", "user id")
	recommendCmd.Flags().StringArrayP("clothing", "c", nil, "clothing item id, repeat for a bulk recommendation")

	recommendCmd.MarkFlagRequired("user")
	recommendCmd.MarkFlagRequired("clothing")
}
