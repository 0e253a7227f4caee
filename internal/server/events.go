package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/docfold/docfold/internal/events"
)

// registerEventRoutes registers the build/reload SSE endpoint used for
// live reload in the browser.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events/stream",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of build progress, source changes, and reload signals",
		Tags:        []string{"events"},
	}, map[string]any{
		"build-started":     events.BuildStartedEvent{},
		"build-finished":    events.BuildFinishedEvent{},
		"source-changed":    events.SourceChangedEvent{},
		"reload":            events.ReloadEvent{},
		"record-suppressed": events.RecordSuppressedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.BuildStartedEvent](s.options.Bus, eventCh),
			events.SubscribeToChannel[events.BuildFinishedEvent](s.options.Bus, eventCh),
			events.SubscribeToChannel[events.SourceChangedEvent](s.options.Bus, eventCh),
			events.SubscribeToChannel[events.ReloadEvent](s.options.Bus, eventCh),
			events.SubscribeToChannel[events.RecordSuppressedEvent](s.options.Bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Send initial connection confirmation
		if err := send.Data(events.ReloadEvent{
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		// Keep connection alive and forward events
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
