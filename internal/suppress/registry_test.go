package suppress

import (
	"log/slog"
	"testing"
)

func TestBuildPartitionsRecords(t *testing.T) {
	registry, err := Build(Config{
		Records: []any{
			"deprecated",
			[]any{"toc", `skipping`, `stale`},
			[]string{"search", `could not index`},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Global pattern lands in the default rule.
	if !registry.DefaultRule().Suppressed(record("docfold.anything", slog.LevelInfo, "option deprecated")) {
		t.Error("default rule did not suppress a global-pattern match")
	}
	if registry.DefaultRule().Suppressed(record("docfold.anything", slog.LevelInfo, "all fine")) {
		t.Error("default rule suppressed a non-matching message")
	}

	// Scoped groups land under their prefixes.
	tocRules := registry.RulesFor("docfold.toc")
	if len(tocRules) != 1 {
		t.Fatalf("RulesFor(docfold.toc) returned %d rules, want 1", len(tocRules))
	}
	if !tocRules[0].Suppressed(record("docfold.toc", slog.LevelInfo, "skipping entry")) {
		t.Error("scoped rule did not suppress a matching record")
	}
	if tocRules[0].Suppressed(record("docfold.toc", slog.LevelInfo, "rebuilding")) {
		t.Error("scoped rule suppressed a non-matching record")
	}

	searchRules := registry.RulesFor("docfold.search")
	if len(searchRules) != 1 {
		t.Fatalf("RulesFor(docfold.search) returned %d rules, want 1", len(searchRules))
	}
}

func TestBuildLoggerSeverities(t *testing.T) {
	// The WARNING/ERROR example from the configuration docs: only those
	// severities of docfold.application are suppressed.
	registry, err := Build(Config{
		Loggers: map[string]any{
			"application": []any{"WARNING", "ERROR"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rules := registry.RulesFor("docfold.application")
	if len(rules) != 1 {
		t.Fatalf("RulesFor returned %d rules, want 1", len(rules))
	}
	rule := rules[0]

	if !rule.Suppressed(record("docfold.application", slog.LevelWarn, "m")) {
		t.Error("WARNING record not suppressed")
	}
	if !rule.Suppressed(record("docfold.application", slog.LevelError, "m")) {
		t.Error("ERROR record not suppressed")
	}
	if rule.Suppressed(record("docfold.application", slog.LevelInfo, "m")) {
		t.Error("INFO record suppressed")
	}

	// Unrelated loggers have no rules.
	if got := registry.RulesFor("docfold.other"); len(got) != 0 {
		t.Errorf("RulesFor(docfold.other) returned %d rules, want 0", len(got))
	}
}

func TestBuildMergesLoggerAndRecordEntries(t *testing.T) {
	// A logger named in both the severities map and a scoped record group
	// produces two independent rules for the same prefix, consulted in
	// declaration order.
	registry, err := Build(Config{
		Loggers: map[string]any{
			"toc": "ERROR",
		},
		Records: []any{
			[]any{"toc", `skipping`},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rules := registry.RulesFor("docfold.toc")
	if len(rules) != 2 {
		t.Fatalf("RulesFor(docfold.toc) returned %d rules, want 2", len(rules))
	}

	// First rule: severities entry; second rule: scoped record group.
	if !rules[0].Suppressed(record("docfold.toc", slog.LevelError, "anything")) {
		t.Error("severities rule did not suppress ERROR")
	}
	if rules[0].Suppressed(record("docfold.toc", slog.LevelWarn, "anything")) {
		t.Error("severities rule suppressed WARN")
	}
	if !rules[1].Suppressed(record("docfold.toc", slog.LevelWarn, "skipping")) {
		t.Error("record rule did not suppress a pattern match")
	}
}

func TestBuildSubtreeLookup(t *testing.T) {
	registry, err := Build(Config{
		Loggers: map[string]any{
			"search": true,
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := registry.RulesFor("docfold.search.indexer"); len(got) != 1 {
		t.Errorf("RulesFor(docfold.search.indexer) returned %d rules, want 1", len(got))
	}
	if got := registry.RulesFor("docfold.searchlight"); len(got) != 0 {
		t.Errorf("RulesFor(docfold.searchlight) returned %d rules, want 0", len(got))
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad severity type", Config{Loggers: map[string]any{"app": []any{2.5}}}},
		{"bad record type", Config{Records: []any{42}}},
		{"bad record element", Config{Records: []any{[]any{"app", 42}}}},
		{"empty record group", Config{Records: []any{[]any{}}}},
		{"bad global pattern", Config{Records: []any{`[`}}},
		{"bad scoped pattern", Config{Records: []any{[]any{"app", `[`}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.cfg); err == nil {
				t.Error("Build did not fail")
			}
		})
	}
}
