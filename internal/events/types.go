package events

// Event type constants for kelindar/event.
const (
	TypeBuildStarted uint32 = iota + 1
	TypeBuildFinished
	TypeSourceChanged
	TypeReload
	TypeLogEntry
	TypeRecordSuppressed
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// BuildStartedEvent is published when a site build begins.
type BuildStartedEvent struct {
	Source    string `json:"source" example:"docs" doc:"Source directory being built"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BuildStartedEvent.
func (e BuildStartedEvent) Type() uint32 { return TypeBuildStarted }

// BuildFinishedEvent is published when a site build completes.
type BuildFinishedEvent struct {
	Pages     int    `json:"pages" example:"12" doc:"Number of pages written"`
	Warnings  int    `json:"warnings" example:"0" doc:"Number of warnings emitted"`
	Duration  string `json:"duration" example:"120ms" doc:"Wall-clock build duration"`
	Error     string `json:"error,omitempty" doc:"Error message when the build failed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BuildFinishedEvent.
func (e BuildFinishedEvent) Type() uint32 { return TypeBuildFinished }

// SourceChangedEvent is published when the source watcher observes a
// change under the documentation tree.
type SourceChangedEvent struct {
	Path      string `json:"path" example:"docs/config.md" doc:"Changed file path"`
	Op        string `json:"op" example:"WRITE" doc:"Filesystem operation"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SourceChangedEvent.
func (e SourceChangedEvent) Type() uint32 { return TypeSourceChanged }

// ReloadEvent tells connected browsers to refresh after a rebuild.
type ReloadEvent struct {
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ReloadEvent.
func (e ReloadEvent) Type() uint32 { return TypeReload }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"build" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// RecordSuppressedEvent is published when a log record is dropped by an
// attached suppression rule.
type RecordSuppressedEvent struct {
	Logger    string `json:"logger" example:"docfold.build" doc:"Qualified logger name"`
	Level     string `json:"level" example:"WARN" doc:"Severity of the dropped record"`
	Message   string `json:"message" doc:"Message of the dropped record"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for RecordSuppressedEvent.
func (e RecordSuppressedEvent) Type() uint32 { return TypeRecordSuppressed }
