// internal/render/goldmark_extensions.go
package render

import (
	"bytes"
	"net/url"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// projectLinkTransformer points links between source documents at their
// rendered pages: `other.md` and `other.md#part` become `other.html...`.
// Absolute URLs are left alone.
type projectLinkTransformer struct{}

func newProjectLinkTransformer() parser.ASTTransformer {
	return &projectLinkTransformer{}
}

func (t *projectLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = rewriteMarkdownLink(link.Destination)
		return ast.WalkContinue, nil
	})
}

func rewriteMarkdownLink(dest []byte) []byte {
	if u, err := url.Parse(string(dest)); err == nil && u.IsAbs() {
		return dest
	}
	path, frag := dest, []byte(nil)
	if i := bytes.IndexByte(dest, '#'); i >= 0 {
		path, frag = dest[:i], dest[i:]
	}
	if !bytes.HasSuffix(path, []byte(".md")) {
		return dest
	}
	out := make([]byte, 0, len(dest)+2)
	out = append(out, bytes.TrimSuffix(path, []byte(".md"))...)
	out = append(out, ".html"...)
	return append(out, frag...)
}
