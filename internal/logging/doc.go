// Package logging provides structured logging with per-module log level
// configuration and attachable suppression filters.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Every module logger is registered centrally: components announce their
// logger by calling GetLogger, and the registry is the single source of truth
// for which loggers exist. Suppression filters attach to registered loggers
// through AttachFilter; there is no runtime introspection.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"build":  "debug",  // Per-module overrides
//			"server": "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("build")
//	logger.Info("Starting build", "pages", n)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("build").With("page", rel)
//	logger.Warn("Unresolved reference")  // Includes page in all logs
//
// # Logger names
//
// Module loggers carry fully-qualified dotted names below the docfold
// namespace: GetLogger("build") owns "docfold.build", and an extension's
// submodule logger GetLogger("search.indexer") owns "docfold.search.indexer".
// Suppression rules match on these names by dot-hierarchical prefix.
//
// # Suppression
//
// A Filter attached via AttachFilter sees each record (logger name, level,
// rendered message) before any output handler and may drop it. Attachment is
// in place and idempotent per filter identity; filters are never removed.
// Dropped records are reported to the callback set by SetSuppressCallback.
//
// # Output Destinations
//
// The system automatically detects available outputs:
//
//	Journal available + stdout available → MultiHandler (both)
//	Journal available only              → JournalHandler
//	Stdout available only               → TextHandler or JSONHandler
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t docfold              # All docfold logs
//	journalctl -t docfold -f           # Follow live
//	journalctl -t docfold MODULE=build # Filter by structured field
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	build = "debug"
//	server = "warn"
package logging
