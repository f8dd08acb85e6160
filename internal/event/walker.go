package event

import "github.com/yuin/goldmark/ast"

// Walker is a pull-based traversal of a goldmark AST. It yields the same
// enter/leave sequence as ast.Walk, but one event per call, so nothing is
// visited before the consumer asks for it.
type Walker struct {
	root     ast.Node
	node     ast.Node
	entering bool
}

// Walk returns a Walker positioned before root's Start event. A nil root
// yields an empty stream.
func Walk(root ast.Node) *Walker {
	return &Walker{root: root, node: root, entering: true}
}

// Next implements Source.
func (w *Walker) Next() (Event, bool) {
	n := w.node
	if n == nil {
		return Event{}, false
	}
	ev := EndOf(n)
	if w.entering {
		ev = StartOf(n)
	}
	w.advance()
	return ev, true
}

func (w *Walker) advance() {
	n := w.node
	if w.entering {
		if child := n.FirstChild(); child != nil {
			w.node = child
			return
		}
		w.entering = false
		return
	}
	if n == w.root {
		w.node = nil
		return
	}
	if sib := n.NextSibling(); sib != nil {
		w.node = sib
		w.entering = true
		return
	}
	w.node = n.Parent()
}
