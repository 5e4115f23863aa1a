package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/beaconworks/kb-chat-api/internal/adapters/directory"
	"github.com/beaconworks/kb-chat-api/internal/bootstrap"
)

var assignRoleCmd = &cobra.Command{
	Use:   "assign-role <username>",
	Short: "Assign the default user role to a directory account",
	Long: `Set the role attribute of a directory account to the default "user" role.
This is the manual fallback for the post-confirmation hook; it talks to the
identity directory directly using DIRECTORY_* configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssignRole(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(assignRoleCmd)
}

func runAssignRole(ctx context.Context, username string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.Directory.Enabled() {
		return fmt.Errorf("identity directory is not configured: set DIRECTORY_USER_POOL_ID")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dir, err := directory.New(ctx, directory.Options{
		UserPoolID: cfg.Directory.UserPoolID,
		Region:     cfg.Directory.Region,
		Timeout:    time.Duration(cfg.Directory.TimeoutSeconds) * time.Second,
		Logger:     slog.Default(),
	})
	if err != nil {
		return err
	}

	if err := dir.AssignDefaultRole(ctx, username); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "assigned default role to %s\n", username)
	return nil
}
