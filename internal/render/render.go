// internal/render/render.go
package render

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"rough/internal/event"
	"rough/internal/inlineimg"
	"rough/internal/logger"
)

// Options controls Markdown rendering.
type Options struct {
	// Unsafe skips HTML sanitizing, so raw HTML in documents reaches the page.
	Unsafe bool
	Logger *slog.Logger
}

// Renderer turns a Markdown body into an HTML fragment. Parsing and
// serializing are separate steps so the event stream between them can be
// rewritten; single-image paragraphs are unwrapped on the way through.
type Renderer struct {
	markdown   goldmark.Markdown
	serializer *Serializer
	opts       Options
	log        *slog.Logger
}

// New returns a Renderer. It is not safe for concurrent use.
func New(opts Options) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newProjectLinkTransformer(), 100),
			),
		),
	)
	return &Renderer{
		markdown: md,
		serializer: NewSerializer(
			// Raw HTML passes through the renderer; the sanitizer decides
			// what survives.
			html.NewRenderer(html.WithUnsafe()),
			extension.NewTableHTMLRenderer(),
			extension.NewStrikethroughHTMLRenderer(),
			extension.NewTaskCheckBoxHTMLRenderer(),
			extension.NewFootnoteHTMLRenderer(),
		),
		opts: opts,
		log:  logger.OrNop(opts.Logger),
	}
}

// Render converts body to HTML.
func (r *Renderer) Render(body []byte) (string, error) {
	root := r.markdown.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	events := inlineimg.New(event.Walk(root))
	if err := r.serializer.Serialize(&buf, body, events); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	if r.opts.Unsafe {
		return buf.String(), nil
	}
	clean := Sanitize(buf.Bytes())
	r.log.Debug("sanitized html", slog.Int("before", buf.Len()), slog.Int("after", len(clean)))
	return string(clean), nil
}

var ugc = bluemonday.UGCPolicy()

// Sanitize applies the bluemonday user generated content policy to an HTML
// fragment.
func Sanitize(fragment []byte) []byte {
	return ugc.SanitizeBytes(fragment)
}
