package cmd

import (
	"fmt"
	"os"

	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/suppress"
	"github.com/spf13/cobra"
)

// CreateCheckCmd creates the check command.
func CreateCheckCmd() *cobra.Command {
	var configFile string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		Long: `Parses the configuration file and compiles every suppression rule, ` +
			`reporting malformed logger entries, unknown severity names and invalid record groups.`,
		Run: func(_ *cobra.Command, _ []string) {
			suppressCfg, err := config.LoadSuppressConfig(configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", configFile, err)
				os.Exit(1)
			}

			registry, buildErr := suppress.Build(suppressCfg)
			if buildErr != nil {
				fmt.Fprintf(os.Stderr, "%s: invalid suppression rules: %v\n", configFile, buildErr)
				os.Exit(1)
			}

			if !quiet {
				prefixes := registry.Prefixes()
				fmt.Printf("%s: ok\n", configFile)
				fmt.Printf("  logger rules:  %d\n", len(suppressCfg.Loggers))
				fmt.Printf("  record groups: %d\n", len(suppressCfg.Records))
				fmt.Printf("  protected:     %d\n", len(suppressCfg.Protect))
				for _, prefix := range prefixes {
					fmt.Printf("  target: %s\n", prefix)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "docfold.toml", "Path to configuration file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report errors")

	return cmd
}
