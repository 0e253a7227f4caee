package cmd

import (
	"context"
	"os"

	"github.com/docfold/docfold/internal/build"
	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
	"github.com/docfold/docfold/internal/extension"
	"github.com/docfold/docfold/internal/logging"
	"github.com/spf13/cobra"
)

// CreateBuildCmd creates the build command.
func CreateBuildCmd() *cobra.Command {
	var configFile string
	var source string
	var output string
	var title string
	var logJSON bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the documentation site once",
		Long: `Renders every Markdown page under the source directory into the output ` +
			`directory and writes an objects.json inventory of all directive targets.`,
		Run: func(_ *cobra.Command, _ []string) {
			loggingConfig := config.LoadLoggingConfig(configFile)
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("main")

			suppressCfg, err := config.LoadSuppressConfig(configFile)
			if err != nil {
				logger.Error("Failed to load suppression config", "error", err)
				os.Exit(1)
			}

			domain := directives.NewDomain()
			app := extension.NewApp(domain, events.New(), suppressCfg)
			if setupErr := app.Setup(); setupErr != nil {
				logger.Error("Failed to set up extensions", "error", setupErr)
				os.Exit(1)
			}

			builder := build.New(build.Options{
				Source: source,
				Output: output,
				Title:  title,
				Domain: domain,
				Bus:    app.Bus(),
			})

			result, buildErr := builder.Build(context.Background())
			if buildErr != nil {
				logger.Error("Build failed", "error", buildErr)
				os.Exit(1)
			}

			logger.Info("Build finished",
				"pages", result.Pages,
				"warnings", result.Warnings,
				"duration", result.Duration)

			if strict && result.Warnings > 0 {
				logger.Error("Build produced warnings in strict mode", "warnings", result.Warnings)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "docfold.toml", "Path to configuration file")
	cmd.Flags().StringVarP(&source, "source", "s", "docs", "Documentation source directory")
	cmd.Flags().StringVarP(&output, "output", "o", "_site", "Rendered site output directory")
	cmd.Flags().StringVar(&title, "title", "Documentation", "Site title")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the build produces warnings")

	return cmd
}
