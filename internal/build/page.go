package build

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	directiveFence = regexp.MustCompile("^```\\{([a-zA-Z][\\w-]*)\\}\\s*(.*)$")
	fenceClose     = regexp.MustCompile("^```\\s*$")
	plainFence     = regexp.MustCompile("^```")
	roleRef        = regexp.MustCompile("\\{([a-zA-Z][\\w-]*)\\}`([^`]+)`")
	headingLine    = regexp.MustCompile(`^#\s+(.*)$`)
)

// page is one Markdown source file split into lines.
type page struct {
	relPath string
	title   string
	lines   []string
}

// loadPage reads a source file. The page title is the first level-one
// heading, falling back to the file name.
func loadPage(sourceDir, relPath string) (*page, error) {
	raw, err := os.ReadFile(filepath.Join(sourceDir, relPath))
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", relPath, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	title := strings.TrimSuffix(filepath.Base(relPath), ".md")
	for _, line := range lines {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			title = strings.TrimSpace(m[1])
			break
		}
	}

	return &page{
		relPath: relPath,
		title:   title,
		lines:   lines,
	}, nil
}

// outputPath maps the source path to the generated HTML path.
func (p *page) outputPath() string {
	return strings.TrimSuffix(p.relPath, ".md") + ".html"
}

// directiveBlock is one parsed ```{kind} signature ... ``` block.
type directiveBlock struct {
	kind      string
	signature string
	start     int // line index of the opening fence
	end       int // line index of the closing fence, len(lines) when unclosed
}

// directiveBlocks scans a page for directive fences. Ordinary code
// fences are skipped so a ```{kind} line inside an example stays text.
func (p *page) directiveBlocks() []directiveBlock {
	var blocks []directiveBlock
	inPlainFence := false

	for i := 0; i < len(p.lines); i++ {
		line := p.lines[i]

		if inPlainFence {
			if fenceClose.MatchString(line) {
				inPlainFence = false
			}
			continue
		}

		if m := directiveFence.FindStringSubmatch(line); m != nil {
			block := directiveBlock{
				kind:      m[1],
				signature: strings.TrimSpace(m[2]),
				start:     i,
				end:       len(p.lines),
			}
			for j := i + 1; j < len(p.lines); j++ {
				if fenceClose.MatchString(p.lines[j]) {
					block.end = j
					break
				}
			}
			blocks = append(blocks, block)
			i = block.end
			continue
		}

		if plainFence.MatchString(line) {
			inPlainFence = true
		}
	}

	return blocks
}
