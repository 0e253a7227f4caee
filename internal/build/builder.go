// Package build renders a Markdown source tree into a static HTML site.
// Directive fences collect cross-referenceable objects into the
// directive domain on a first pass; the second pass renders pages and
// resolves role references against the collected inventory.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/metrics"
)

// Options configures a Builder. Bus and Metrics may be nil.
type Options struct {
	Source  string
	Output  string
	Title   string
	Domain  *directives.Domain
	Bus     *events.Bus
	Metrics *metrics.Metrics
}

// Result summarizes one finished build.
type Result struct {
	Pages    int
	Warnings int
	Duration time.Duration
}

// Builder renders the documentation site.
type Builder struct {
	opts Options
	md   goldmark.Markdown
	tmpl *template.Template
	log  *slog.Logger

	warnings int
}

// New creates a Builder. Raw HTML emitted by the directive renderer
// must survive Markdown conversion, hence WithUnsafe.
func New(opts Options) *Builder {
	if opts.Title == "" {
		opts.Title = "Documentation"
	}
	return &Builder{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
		),
		tmpl: template.Must(template.New("page").Parse(pageTemplate)),
		log:  logging.GetLogger("build"),
	}
}

// Build runs the two-pass pipeline and writes the site to the output
// directory, including the objects.json inventory.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	started := time.Now()
	b.warnings = 0
	b.publish(events.BuildStartedEvent{
		Source:    b.opts.Source,
		Timestamp: started.UTC().Format(time.RFC3339),
	})

	result, err := b.run(ctx)
	result.Duration = time.Since(started)
	result.Warnings = b.warnings

	finished := events.BuildFinishedEvent{
		Pages:     result.Pages,
		Warnings:  result.Warnings,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := "success"
	if err != nil {
		finished.Error = err.Error()
		status = "failure"
	}
	b.publish(finished)
	if b.opts.Metrics != nil {
		b.opts.Metrics.ObserveBuild(status, result.Pages, result.Warnings, result.Duration)
	}
	return result, err
}

func (b *Builder) run(ctx context.Context) (Result, error) {
	var result Result
	b.opts.Domain.ResetObjects()

	relPaths, err := b.scan()
	if err != nil {
		return result, err
	}
	if len(relPaths) == 0 {
		return result, fmt.Errorf("no Markdown pages under %s", b.opts.Source)
	}

	pages := make([]*page, 0, len(relPaths))
	for _, rel := range relPaths {
		p, loadErr := loadPage(b.opts.Source, rel)
		if loadErr != nil {
			return result, loadErr
		}
		pages = append(pages, p)
	}

	// Pass 1: collect directive objects so forward references resolve.
	for _, p := range pages {
		b.collect(p)
	}

	// Pass 2: render.
	for _, p := range pages {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if renderErr := b.render(p); renderErr != nil {
			return result, renderErr
		}
		result.Pages++
	}

	if invErr := b.writeInventory(); invErr != nil {
		return result, invErr
	}
	return result, nil
}

// scan returns the relative paths of all Markdown pages, sorted for a
// deterministic build order.
func (b *Builder) scan() ([]string, error) {
	var relPaths []string
	err := filepath.WalkDir(b.opts.Source, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") && p != b.opts.Source {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != ".md" {
			return nil
		}
		rel, relErr := filepath.Rel(b.opts.Source, p)
		if relErr != nil {
			return relErr
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", b.opts.Source, err)
	}
	sort.Strings(relPaths)
	return relPaths, nil
}

func (b *Builder) collect(p *page) {
	for _, block := range p.directiveBlocks() {
		if _, ok := b.opts.Domain.Directive(block.kind); !ok {
			b.warn("Unknown directive kind", "kind", block.kind, "page", p.relPath)
			continue
		}
		if block.signature == "" {
			b.warn("Directive without signature", "kind", block.kind, "page", p.relPath)
			continue
		}
		if existing, ok := b.opts.Domain.AddObject(block.kind, block.signature, p.relPath); !ok {
			b.warn("Duplicate object, keeping first definition",
				"kind", block.kind,
				"name", existing.Name,
				"page", p.relPath,
				"first", existing.Page)
		}
	}
}

func (b *Builder) render(p *page) error {
	source := b.expandDirectives(p)
	source = b.resolveRoles(p, source)

	var body strings.Builder
	if err := b.md.Convert([]byte(source), &body); err != nil {
		return fmt.Errorf("render page %s: %w", p.relPath, err)
	}

	outPath := filepath.Join(b.opts.Output, filepath.FromSlash(p.outputPath()))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("write page %s: %w", p.relPath, err)
	}
	defer f.Close()

	return b.tmpl.Execute(f, pageData{
		SiteTitle: b.opts.Title,
		Title:     p.title,
		Content:   template.HTML(body.String()),
	})
}

// expandDirectives rewrites directive fences into raw HTML headers,
// keeping the fence body as regular Markdown.
func (b *Builder) expandDirectives(p *page) string {
	blocks := p.directiveBlocks()
	if len(blocks) == 0 {
		return strings.Join(p.lines, "\n")
	}

	var out []string
	next := 0
	for i := 0; i < len(p.lines); i++ {
		if next < len(blocks) && i == blocks[next].start {
			block := blocks[next]
			next++
			out = append(out, b.directiveHeader(block, p), "")
			out = append(out, p.lines[block.start+1:min(block.end, len(p.lines))]...)
			i = block.end
			continue
		}
		out = append(out, p.lines[i])
	}
	return strings.Join(out, "\n")
}

func (b *Builder) directiveHeader(block directiveBlock, p *page) string {
	dir, _ := b.opts.Domain.Directive(block.kind)
	obj, ok := b.opts.Domain.Lookup(block.kind, dir.Parse(block.signature).Name)
	if !ok {
		// Signature was rejected during collection; show it verbatim.
		return fmt.Sprintf(`<div class="directive %s"><span class="directive-label">%s</span> <code>%s</code></div>`,
			template.HTMLEscapeString(block.kind),
			template.HTMLEscapeString(dir.Label),
			template.HTMLEscapeString(block.signature))
	}

	var suffix string
	switch {
	case obj.Default != "":
		suffix = fmt.Sprintf(` <span class="directive-default">= %s</span>`,
			template.HTMLEscapeString(obj.Default))
	case obj.Params != nil:
		suffix = fmt.Sprintf(` <span class="directive-params">(%s)</span>`,
			template.HTMLEscapeString(strings.Join(obj.Params, ", ")))
	case block.kind == "event":
		suffix = ` <span class="directive-params">()</span>`
	}

	return fmt.Sprintf(`<div class="directive %s" id="%s"><span class="directive-label">%s</span> <code>%s</code>%s</div>`,
		template.HTMLEscapeString(block.kind),
		template.HTMLEscapeString(obj.Anchor),
		template.HTMLEscapeString(dir.Label),
		template.HTMLEscapeString(obj.Name),
		suffix)
}

// resolveRoles replaces {kind}`target` references with links into the
// object inventory. Unresolved references stay as inline code and emit
// a warning.
func (b *Builder) resolveRoles(p *page, source string) string {
	fromDir := path.Dir(p.outputPath())
	return roleRef.ReplaceAllStringFunc(source, func(match string) string {
		m := roleRef.FindStringSubmatch(match)
		kind, target := m[1], m[2]
		if _, ok := b.opts.Domain.Directive(kind); !ok {
			return match
		}
		obj, ok := b.opts.Domain.Lookup(kind, target)
		if !ok {
			b.warn("Unresolved reference", "kind", kind, "target", target, "page", p.relPath)
			return fmt.Sprintf("`%s`", target)
		}

		href := strings.TrimSuffix(obj.Page, ".md") + ".html"
		if rel, err := filepath.Rel(fromDir, href); err == nil {
			href = filepath.ToSlash(rel)
		}
		return fmt.Sprintf(`<a class="xref" href="%s#%s"><code>%s</code></a>`,
			template.HTMLEscapeString(href),
			template.HTMLEscapeString(obj.Anchor),
			template.HTMLEscapeString(obj.Name))
	})
}

// writeInventory dumps the object domain next to the site for external
// cross-reference consumers.
func (b *Builder) writeInventory() error {
	objects := b.opts.Domain.Objects()
	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}
	if err := os.MkdirAll(b.opts.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	invPath := filepath.Join(b.opts.Output, "objects.json")
	if err := os.WriteFile(invPath, data, 0o644); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	return nil
}

func (b *Builder) warn(msg string, args ...any) {
	b.warnings++
	b.log.Warn(msg, args...)
}

func (b *Builder) publish(ev events.Event) {
	if b.opts.Bus != nil {
		b.opts.Bus.Publish(ev)
	}
}

type pageData struct {
	SiteTitle string
	Title     string
	Content   template.HTML
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - {{.SiteTitle}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; }
.directive { border-left: 3px solid #0969da; padding: 0.25rem 0.75rem; margin: 1rem 0 0.25rem; background: #f6f8fa; }
.directive-label { color: #57606a; font-size: 0.85em; margin-right: 0.4rem; }
.directive-default, .directive-params { color: #57606a; }
a.xref code { color: #0969da; }
</style>
</head>
<body>
<header><strong>{{.SiteTitle}}</strong></header>
<main>
{{.Content}}
</main>
</body>
</html>
`
