// Package event turns a goldmark AST into a lazy stream of structural events
// so that stream transformers can sit between the Markdown parser and the
// HTML renderer.
package event

import (
	"fmt"
	"iter"

	"github.com/yuin/goldmark/ast"
)

// Kind says whether an event opens or closes a node.
type Kind uint8

const (
	// Start is emitted when a node is entered.
	Start Kind = iota + 1
	// End is emitted when a node is left, after all of its children.
	End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "Start"
	case End:
		return "End"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one unit of a parsed document. Every node produces exactly one
// Start and one End event, text runs included.
type Event struct {
	Kind Kind
	Node ast.Node
}

// StartOf returns the Start event for n.
func StartOf(n ast.Node) Event { return Event{Kind: Start, Node: n} }

// EndOf returns the End event for n.
func EndOf(n ast.Node) Event { return Event{Kind: End, Node: n} }

// Is reports whether e is a kind event for a node of the given node kind.
func (e Event) Is(kind Kind, node ast.NodeKind) bool {
	return e.Kind == kind && e.Node != nil && e.Node.Kind() == node
}

// IsStart reports whether e opens a node of the given kind.
func (e Event) IsStart(node ast.NodeKind) bool { return e.Is(Start, node) }

// IsEnd reports whether e closes a node of the given kind.
func (e Event) IsEnd(node ast.NodeKind) bool { return e.Is(End, node) }

// Image returns the destination and title of an image event. ok is false
// for events of other nodes.
func (e Event) Image() (destination, title string, ok bool) {
	img, ok := e.Node.(*ast.Image)
	if !ok {
		return "", "", false
	}
	return string(img.Destination), string(img.Title), true
}

func (e Event) String() string {
	if e.Node == nil {
		return e.Kind.String() + "(<nil>)"
	}
	if img, ok := e.Node.(*ast.Image); ok {
		return fmt.Sprintf("%s(Image %q)", e.Kind, img.Destination)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Node.Kind())
}

// Source produces events on demand. Next returns false once the stream is
// exhausted; a Source is read once, front to back.
type Source interface {
	Next() (Event, bool)
}

// All adapts src to a range-over-func iterator.
func All(src Source) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, ok := src.Next()
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Collect drains src into a slice.
func Collect(src Source) []Event {
	var out []Event
	for ev := range All(src) {
		out = append(out, ev)
	}
	return out
}

type sliceSource struct {
	events []Event
}

// FromSlice returns a Source that yields events in order.
func FromSlice(events []Event) Source {
	return &sliceSource{events: events}
}

func (s *sliceSource) Next() (Event, bool) {
	if len(s.events) == 0 {
		return Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}
