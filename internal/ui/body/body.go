// Package body renders highlighted message bodies for the lower pane.
package body

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/smbox/smbox/internal/cachemanager"
	"github.com/smbox/smbox/internal/highlight"
	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/ui/styles"
)

// tabWidth matches lipgloss's tab expansion.
const tabWidth = 4

// Request identifies one rendering of a message body. Generation changes
// whenever the mbox is reloaded, so cached bodies from an older load are never
// served for a different message at the same index.
type Request struct {
	Generation int
	Index      int
	Width      int
	Message    *mbox.Message
}

func (r Request) key() string {
	return fmt.Sprintf("%d:%d:%d", r.Generation, r.Index, r.Width)
}

// Renderer highlights and wraps message bodies, caching the result.
type Renderer struct {
	engine *highlight.Engine
	wrap   bool
	cache  *cachemanager.Loader[string, []string, Request]
}

// New creates a Renderer using engine. With wrapBody false long lines are
// truncated at the pane width instead of wrapped.
func New(engine *highlight.Engine, wrapBody bool) *Renderer {
	r := &Renderer{engine: engine, wrap: wrapBody}
	store := cachemanager.NewInMemoryCacheManager[string, []string](
		"body", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval,
	)
	r.cache = cachemanager.NewLoader(cachemanager.CacheManager[string, []string](store), Request.key, r.render, 0)
	return r
}

// Lines returns the rendered body of req.Message, one terminal row per entry.
func (r *Renderer) Lines(ctx context.Context, req Request) []string {
	lines, err := r.cache.Get(ctx, req)
	if err != nil {
		log.ErrorErr(log.CatHighlight, "Rendering body failed", err, "index", req.Index)
		return nil
	}
	return lines
}

// Invalidate drops every cached body.
func (r *Renderer) Invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx)
}

// Cached returns the number of cached bodies.
func (r *Renderer) Cached() int {
	return r.cache.Len()
}

func (r *Renderer) render(_ context.Context, req Request) ([]string, error) {
	if req.Message == nil {
		return nil, fmt.Errorf("no message at index %d", req.Index)
	}
	src, ok := req.Message.BodyLines()
	if !ok {
		return nil, nil
	}

	// Each body is its own scan; context never leaks between messages.
	session := r.engine.NewSession()
	out := make([]string, 0, len(src))
	for _, line := range src {
		line = strings.TrimSuffix(line, "\r")
		painted := Paint(line, session.ProcessLine(line))
		out = append(out, r.fit(painted, req.Width)...)
	}
	return out, nil
}

func (r *Renderer) fit(line string, width int) []string {
	if width <= 0 || ansi.StringWidth(line) <= width {
		return []string{line}
	}
	if !r.wrap {
		return []string{ansi.Truncate(line, width, "")}
	}
	wrapped := wrap.String(wordwrap.String(line, width), width)
	return strings.Split(wrapped, "\n")
}

// Paint renders line with spans applied in list order, later spans winning.
// Tabs are expanded after coloring so span offsets stay byte offsets into
// the original line.
func Paint(line string, spans highlight.Spans) string {
	runs := spans.Runs(len(line))
	if len(runs) == 0 {
		return expandTabs(line)
	}

	var b strings.Builder
	pos := 0
	for _, run := range runs {
		b.WriteString(expandTabs(line[pos:run.Start]))
		b.WriteString(styles.PaletteStyle(uint8(run.Color)).Render(expandTabs(line[run.Start:run.End])))
		pos = run.End
	}
	b.WriteString(expandTabs(line[pos:]))
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
