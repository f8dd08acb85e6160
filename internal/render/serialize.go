package render

import (
	"bufio"
	"io"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"

	"rough/internal/event"
)

// Serializer writes HTML for an event stream using goldmark node renderer
// functions, one call per event, exactly as goldmark's own renderer would
// call them during an ast.Walk.
type Serializer struct {
	funcs map[ast.NodeKind]renderer.NodeRendererFunc
}

// NewSerializer collects the functions of nodeRenderers. When two renderers
// handle the same kind, the later one wins.
func NewSerializer(nodeRenderers ...renderer.NodeRenderer) *Serializer {
	s := &Serializer{funcs: make(map[ast.NodeKind]renderer.NodeRendererFunc)}
	for _, nr := range nodeRenderers {
		nr.RegisterFuncs(s)
	}
	return s
}

// Register implements renderer.NodeRendererFuncRegisterer.
func (s *Serializer) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	s.funcs[kind] = fn
}

// Serialize renders every event of src to w. source is the Markdown text
// the events' nodes were parsed from.
func (s *Serializer) Serialize(w io.Writer, source []byte, src event.Source) error {
	bw := bufio.NewWriter(w)
	// node whose children a renderer asked to skip
	var skip ast.Node
	for ev := range event.All(src) {
		if skip != nil {
			if ev.Kind != event.End || ev.Node != skip {
				continue
			}
			skip = nil
		}
		fn := s.funcs[ev.Node.Kind()]
		if fn == nil {
			continue
		}
		status, err := fn(bw, source, ev.Node, ev.Kind == event.Start)
		if err != nil {
			return err
		}
		switch status {
		case ast.WalkStop:
			return bw.Flush()
		case ast.WalkSkipChildren:
			if ev.Kind == event.Start {
				skip = ev.Node
			}
		}
	}
	return bw.Flush()
}
