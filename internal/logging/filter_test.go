package logging

import (
	"strings"
	"testing"
)

// stubFilter suppresses records whose message contains a fixed substring.
type stubFilter struct {
	contains string
}

func (f *stubFilter) Suppressed(rec Record) bool {
	return f.contains != "" && strings.Contains(rec.Message, f.contains)
}

func TestAttachFilterIdentity(t *testing.T) {
	resetLogging()
	Initialize(Config{Level: "info", Format: "text"})
	GetLogger("build")

	f := &stubFilter{contains: "noise"}

	if !AttachFilter("build", f) {
		t.Fatal("first AttachFilter returned false, want true")
	}
	if AttachFilter("build", f) {
		t.Error("second AttachFilter with same filter returned true, want false")
	}

	// A distinct filter with identical contents is a different identity.
	if !AttachFilter("build", &stubFilter{contains: "noise"}) {
		t.Error("AttachFilter with equal-but-distinct filter returned false, want true")
	}

	if got := len(AttachedFilters("build")); got != 2 {
		t.Errorf("AttachedFilters returned %d filters, want 2", got)
	}
}

func TestAttachFilterUnknownModule(t *testing.T) {
	resetLogging()
	Initialize(Config{Level: "info", Format: "text"})

	if AttachFilter("missing", &stubFilter{contains: "x"}) {
		t.Error("AttachFilter on unregistered module returned true, want false")
	}
}

func TestFilterDropsSuppressedRecords(t *testing.T) {
	resetLogging()
	Initialize(Config{Level: "info", Format: "text"})

	var suppressed []Record
	SetSuppressCallback(func(rec Record) {
		suppressed = append(suppressed, rec)
	})

	logger := GetLogger("build")
	AttachFilter("build", &stubFilter{contains: "noise"})

	logger.Info("noise goes away")
	logger.Info("signal stays")

	entries := GetBuffer().ReadAll()
	if len(entries) != 1 {
		t.Fatalf("buffer has %d entries, want 1", len(entries))
	}
	if entries[0].Message != "signal stays" {
		t.Errorf("surviving entry = %q, want %q", entries[0].Message, "signal stays")
	}

	if len(suppressed) != 1 {
		t.Fatalf("suppress callback fired %d times, want 1", len(suppressed))
	}
	if suppressed[0].Logger != "docfold.build" {
		t.Errorf("suppressed record logger = %q, want %q", suppressed[0].Logger, "docfold.build")
	}
	if suppressed[0].Message != "noise goes away" {
		t.Errorf("suppressed record message = %q, want %q", suppressed[0].Message, "noise goes away")
	}
}

func TestFilterAppliesToPreviouslyCreatedLogger(t *testing.T) {
	resetLogging()
	Initialize(Config{Level: "info", Format: "text"})

	// The logger is handed out before the filter is attached; attachment
	// must still take effect on it.
	logger := GetLogger("build")
	logger.Info("before attach")

	AttachFilter("build", &stubFilter{contains: "before"})
	logger.Info("before attach")
	logger.Info("unrelated")

	entries := GetBuffer().ReadAll()
	var messages []string
	for _, e := range entries {
		messages = append(messages, e.Message)
	}

	if len(messages) != 2 || messages[0] != "before attach" || messages[1] != "unrelated" {
		t.Errorf("buffer messages = %v, want [before attach, unrelated]", messages)
	}
}

func TestFilterSurvivesReinitialize(t *testing.T) {
	resetLogging()
	Initialize(Config{Level: "info", Format: "text"})

	GetLogger("build")
	AttachFilter("build", &stubFilter{contains: "noise"})

	// Re-running Initialize rebuilds handler chains; attached filters stay.
	Initialize(Config{Level: "debug", Format: "text"})

	logger := GetLogger("build")
	logger.Info("noise again")
	logger.Info("still signal")

	entries := GetBuffer().ReadAll()
	if len(entries) != 1 || entries[0].Message != "still signal" {
		t.Errorf("unexpected buffer contents after reinitialize: %v", entries)
	}
}
