package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/updater"
	"github.com/spf13/cobra"
)

// CreateUpgradeCmd creates the upgrade command.
func CreateUpgradeCmd() *cobra.Command {
	var repository string
	var prerelease bool
	var checkOnly bool
	var rollback bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade to the latest release",
		Long: `Checks GitHub releases for a newer version and replaces the current ` +
			`binary in place. The previous binary is kept as a backup for rollback.`,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			svc, err := updater.NewService(&updater.Options{
				Repository: repository,
				Prerelease: prerelease,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "upgrade: %v\n", err)
				os.Exit(1)
			}
			if !svc.IsEnabled() {
				fmt.Fprintf(os.Stderr, "upgrade: updates disabled: %s\n", svc.DisabledReason())
				os.Exit(1)
			}

			ctx := context.Background()

			if rollback {
				if rbErr := svc.Rollback(ctx); rbErr != nil {
					fmt.Fprintf(os.Stderr, "upgrade: rollback failed: %v\n", rbErr)
					os.Exit(1)
				}
				fmt.Println("Rolled back to previous version")
				return
			}

			info, checkErr := svc.CheckForUpdate(ctx)
			if checkErr != nil {
				fmt.Fprintf(os.Stderr, "upgrade: check failed: %v\n", checkErr)
				os.Exit(1)
			}
			if !info.UpdateAvailable {
				fmt.Printf("Already up to date (%s)\n", info.CurrentVersion)
				return
			}

			fmt.Printf("Update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if info.ReleaseURL != "" {
				fmt.Printf("Release: %s\n", info.ReleaseURL)
			}
			if checkOnly {
				return
			}

			if applyErr := svc.ApplyUpdate(ctx); applyErr != nil {
				fmt.Fprintf(os.Stderr, "upgrade: apply failed: %v\n", applyErr)
				os.Exit(1)
			}
			fmt.Printf("Updated to %s, the new version runs on next invocation\n", info.LatestVersion)
		},
	}

	cmd.Flags().StringVar(&repository, "repository", "docfold/docfold", "GitHub repository slug to fetch releases from")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prerelease versions")
	cmd.Flags().BoolVar(&checkOnly, "check-only", false, "Only check for a newer version")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Revert to the backed-up previous version")

	return cmd
}
