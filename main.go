package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/docfold/docfold/cmd"
	"github.com/docfold/docfold/internal/build"
	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
	"github.com/docfold/docfold/internal/extension"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/metrics"
	"github.com/docfold/docfold/internal/server"
	"github.com/fsnotify/fsnotify"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"docfold.toml"`

	// Server settings
	Port    string `help:"Port to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`
	Watch   bool   `help:"Rebuild on source changes" default:"true" toml:"server.watch" env:"SERVER_WATCH"`
	Metrics bool   `help:"Expose Prometheus metrics" default:"true" toml:"server.metrics" env:"SERVER_METRICS"`

	// Site settings
	Source string `help:"Documentation source directory" short:"s" default:"docs" toml:"site.source" env:"SITE_SOURCE"`
	Output string `help:"Rendered site output directory" short:"o" default:"_site" toml:"site.output" env:"SITE_OUTPUT"`
	Title  string `help:"Site title" default:"Documentation" toml:"site.title" env:"SITE_TITLE"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBuild      string `help:"Build logging level" default:"info" toml:"logging.build" env:"LOGGING_BUILD"`
	LoggingApp        string `help:"Extension lifecycle logging level" default:"info" toml:"logging.app" env:"LOGGING_APP"`
	LoggingSuppress   string `help:"Suppression logging level" default:"info" toml:"logging.suppress" env:"LOGGING_SUPPRESS"`
	LoggingDirectives string `help:"Directives logging level" default:"info" toml:"logging.directives" env:"LOGGING_DIRECTIVES"`
	LoggingHTTP       string `help:"HTTP logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingWatch      string `help:"Source watcher logging level" default:"info" toml:"logging.watch" env:"LOGGING_WATCH"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"build":      opts.LoggingBuild,
				"app":        opts.LoggingApp,
				"suppress":   opts.LoggingSuppress,
				"directives": opts.LoggingDirectives,
				"http":       opts.LoggingHTTP,
				"watch":      opts.LoggingWatch,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		eventBus := events.New()
		m := metrics.New(nil)

		// Mirror every log record onto the event bus so SSE clients see
		// live logs, and count suppressed records per logger.
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})
		logging.SetSuppressCallback(func(rec logging.Record) {
			m.ObserveSuppressed(rec.Logger)
			eventBus.Publish(events.RecordSuppressedEvent{
				Logger:    rec.Logger,
				Level:     rec.Level.String(),
				Message:   rec.Message,
				Timestamp: time.Now().Format(time.RFC3339Nano),
			})
		})

		suppressCfg, cfgErr := config.LoadSuppressConfig(opts.Config)
		if cfgErr != nil {
			logger.Error("Failed to load suppression config", "error", cfgErr)
			os.Exit(1)
		}

		domain := directives.NewDomain()
		app := extension.NewApp(domain, eventBus, suppressCfg)
		if setupErr := app.Setup(); setupErr != nil {
			logger.Error("Failed to set up extensions", "error", setupErr)
			os.Exit(1)
		}

		builder := build.New(build.Options{
			Source:  opts.Source,
			Output:  opts.Output,
			Title:   opts.Title,
			Domain:  domain,
			Bus:     eventBus,
			Metrics: m,
		})

		serverOpts := &server.Options{
			SiteDir: opts.Output,
			Title:   opts.Title,
			Bus:     eventBus,
			Domain:  domain,
		}
		if opts.Metrics {
			serverOpts.PrometheusHandler = m.Handler()
		}
		srv := server.NewServer(serverOpts)

		// Rebuild on source changes. The loader returns the build result so
		// reload handlers can log it; browsers get a ReloadEvent after each
		// successful rebuild.
		var watcher *config.Watcher[build.Result]
		if opts.Watch {
			watchLogger := logging.GetLogger("watch")
			watcher = config.NewWatcher(
				opts.Source,
				func(string) (build.Result, error) {
					return builder.Build(context.Background())
				},
				watchLogger,
				config.WithRecursive[build.Result](),
				config.WithDebounce[build.Result](500*time.Millisecond),
				config.WithEventHook[build.Result](func(ev fsnotify.Event) {
					eventBus.Publish(events.SourceChangedEvent{
						Path:      ev.Name,
						Op:        ev.Op.String(),
						Timestamp: time.Now().Format(time.RFC3339Nano),
					})
				}),
			)
			watcher.OnReload(func(result build.Result) {
				watchLogger.Info("Site rebuilt",
					"pages", result.Pages,
					"warnings", result.Warnings,
					"duration", result.Duration)
				eventBus.Publish(events.ReloadEvent{
					Timestamp: time.Now().Format(time.RFC3339Nano),
				})
			})
		}

		hooks.OnStart(func() {
			if _, buildErr := builder.Build(context.Background()); buildErr != nil {
				logger.Error("Initial build failed", "error", buildErr)
				os.Exit(1)
			}

			if watcher != nil {
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Failed to watch source directory", "error", watchErr)
				}
			}

			if startErr := srv.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down preview server")
			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Error("Error stopping source watcher", "error", stopErr)
				}
			}
			if stopErr := srv.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
		})
	})

	cli.Root().Use = "docfold"
	cli.Root().Short = "Build and preview Markdown documentation sites"

	cli.Root().AddCommand(cmd.CreateBuildCmd())
	cli.Root().AddCommand(cmd.CreateCheckCmd())
	cli.Root().AddCommand(cmd.CreateUpgradeCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	cli.Run()
}
