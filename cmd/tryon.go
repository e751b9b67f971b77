package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/logger"
	"github.com/spigell/fitting-room/internal/tryon"
)

var tryOnCmd = &cobra.Command{
	Use:   "tryon",
	Short: "Create and inspect virtual try-on requests",
}

var tryOnCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Run a fit analysis of a clothing item on the user's preset image",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		in := tryon.CreateInput{}
		in.UserID, _ = cmd.Flags().GetString("user")
		in.ClothingID, _ = cmd.Flags().GetString("clothing")
		in.PresetImageID, _ = cmd.Flags().GetString("preset")
		in.ClothingImageRef, _ = cmd.Flags().GetString("image")

		req, err := a.tryOnService(ctx).Create(ctx, in)
		if err != nil {
			a.fatal("creating a try-on", err)
		}

		fields := logger.TryOnFields(req.ID, req.UserID, req.ClothingID)
		if req.Status == tryon.StatusFailed {
			a.logger.Warn("try-on failed", append(fields, zap.String("reason", req.ErrorMessage))...)
		} else {
			a.logger.Info("try-on completed", fields...)
		}

		if err := printJSON(cmd.OutOrStdout(), req); err != nil {
			a.fatal("printing the try-on", err)
		}
	},
}

var tryOnGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a try-on request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")

		req, err := a.tryOnService(ctx).Get(ctx, userID, args[0])
		if err != nil {
			a.fatal("getting a try-on", err)
		}
		if err := printJSON(cmd.OutOrStdout(), req); err != nil {
			a.fatal("printing the try-on", err)
		}
	},
}

var tryOnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the user's try-on requests, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")
		rawStatus, _ := cmd.Flags().GetString("status")

		status, err := tryon.ParseStatus(rawStatus)
		if err != nil {
			a.fatal("parsing the status filter", err)
		}

		requests, err := a.tryOnService(ctx).List(ctx, userID, status)
		if err != nil {
			a.fatal("listing try-ons", err)
		}
		if err := printJSON(cmd.OutOrStdout(), requests); err != nil {
			a.fatal("printing try-ons", err)
		}
	},
}

var tryOnDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a try-on request",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")

		if err := a.tryOnService(ctx).Delete(ctx, userID, args[0]); err != nil {
			a.fatal("deleting a try-on", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "try-on %s deleted\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(tryOnCmd)
	tryOnCmd.AddCommand(tryOnCreateCmd, tryOnGetCmd, tryOnListCmd, tryOnDeleteCmd)

	tryOnCmd.PersistentFlags().StringP("user", "u", "", "user id")
	tryOnCmd.MarkPersistentFlagRequired("user")

	tryOnCreateCmd.Flags().StringP("clothing", "c", "", "clothing item id")
	tryOnCreateCmd.Flags().StringP("preset", "p", "", "preset image id (default is the user's default preset image)")
	tryOnCreateCmd.Flags().String("image", "", "clothing image reference (default is the item's primary image)")
	tryOnCreateCmd.MarkFlagRequired("clothing")

	tryOnListCmd.Flags().StringP("status", "s", "", "only list requests in this status (pending, processing, completed, failed)")
}
