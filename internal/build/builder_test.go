package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docfold/docfold/internal/directives"
)

func newTestBuilder(t *testing.T, source, output string) *Builder {
	t.Helper()
	domain := directives.NewDomain()
	if err := domain.RegisterDirective(directives.Confval()); err != nil {
		t.Fatalf("register confval: %v", err)
	}
	if err := domain.RegisterDirective(directives.Event()); err != nil {
		t.Fatalf("register event: %v", err)
	}
	return New(Options{
		Source: source,
		Output: output,
		Title:  "Test Docs",
		Domain: domain,
	})
}

func readOutput(t *testing.T, output, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(output, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestBuildRendersPagesAndResolvesReferences(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "config.md", strings.Join([]string{
		"# Configuration",
		"",
		"```{confval} site_title = 'Docs'",
		"The site title shown in the header.",
		"```",
	}, "\n"))
	writePage(t, source, "guide/usage.md", strings.Join([]string{
		"# Usage",
		"",
		"Set {confval}`site_title` before building.",
	}, "\n"))

	b := newTestBuilder(t, source, output)
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", result.Pages)
	}
	if result.Warnings != 0 {
		t.Errorf("expected no warnings, got %d", result.Warnings)
	}

	configHTML := readOutput(t, output, "config.html")
	if !strings.Contains(configHTML, `id="confval-site_title"`) {
		t.Error("config.html missing directive anchor")
	}
	if !strings.Contains(configHTML, "The site title shown in the header.") {
		t.Error("config.html missing directive body")
	}
	if !strings.Contains(configHTML, "<title>Configuration - Test Docs</title>") {
		t.Error("config.html missing page title")
	}

	usageHTML := readOutput(t, output, filepath.Join("guide", "usage.html"))
	if !strings.Contains(usageHTML, `href="../config.html#confval-site_title"`) {
		t.Errorf("usage.html missing cross-reference link:\n%s", usageHTML)
	}
}

func TestBuildWritesInventory(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "api.md", strings.Join([]string{
		"# API",
		"",
		"```{event} build-finished (app, err)",
		"Fires after every build.",
		"```",
		"",
		"```{confval} output_dir = '_site'",
		"Where the site goes.",
		"```",
	}, "\n"))

	b := newTestBuilder(t, source, output)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}

	var objects []directives.Object
	data := readOutput(t, output, "objects.json")
	if err := json.Unmarshal([]byte(data), &objects); err != nil {
		t.Fatalf("unmarshal inventory: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}
	// Sorted by kind then name.
	if objects[0].Kind != "confval" || objects[0].Name != "output_dir" {
		t.Errorf("unexpected first object %+v", objects[0])
	}
	if objects[1].Kind != "event" || len(objects[1].Params) != 2 {
		t.Errorf("unexpected second object %+v", objects[1])
	}
}

func TestBuildWarnsOnUnresolvedReference(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "index.md", "# Home\n\nSee {confval}`does_not_exist`.\n")

	b := newTestBuilder(t, source, output)
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.Warnings != 1 {
		t.Errorf("expected 1 warning, got %d", result.Warnings)
	}

	html := readOutput(t, output, "index.html")
	if !strings.Contains(html, "<code>does_not_exist</code>") {
		t.Error("unresolved reference should stay inline code")
	}
	if strings.Contains(html, `class="xref"`) {
		t.Error("unresolved reference should not produce a link")
	}
}

func TestBuildWarnsOnDuplicateObject(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "a.md", "```{confval} port = 8080\nFirst.\n```\n")
	writePage(t, source, "b.md", "```{confval} port = 9090\nSecond.\n```\n")

	b := newTestBuilder(t, source, output)
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.Warnings != 1 {
		t.Errorf("expected 1 duplicate warning, got %d", result.Warnings)
	}

	obj, ok := b.opts.Domain.Lookup("confval", "port")
	if !ok || obj.Default != "8080" {
		t.Errorf("first definition should win, got %+v", obj)
	}
}

func TestBuildRebuildKeepsInventoryStable(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "config.md", "```{confval} port = 8080\nListen port.\n```\n")

	b := newTestBuilder(t, source, output)
	for i := 0; i < 2; i++ {
		result, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
		if result.Warnings != 0 {
			t.Errorf("build %d: expected no warnings, got %d", i, result.Warnings)
		}
	}

	if objs := b.opts.Domain.Objects(); len(objs) != 1 {
		t.Errorf("expected 1 object after rebuild, got %d", len(objs))
	}
}

func TestBuildEmptySourceFails(t *testing.T) {
	b := newTestBuilder(t, t.TempDir(), t.TempDir())
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected error for empty source tree")
	}
}

func TestBuildSkipsUnderscoreDirs(t *testing.T) {
	source := t.TempDir()
	output := t.TempDir()

	writePage(t, source, "index.md", "# Home\n")
	writePage(t, source, "_drafts/wip.md", "# WIP\n")

	b := newTestBuilder(t, source, output)
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page, got %d", result.Pages)
	}
	if _, err := os.Stat(filepath.Join(output, "_drafts", "wip.html")); !os.IsNotExist(err) {
		t.Error("draft page should not be rendered")
	}
}
