// Package inlineimg removes the paragraph wrapper around paragraphs whose
// only content is a single image, so such images render as bare <img>
// elements instead of <p><img></p>.
package inlineimg

import (
	"errors"
	"fmt"

	"github.com/yuin/goldmark/ast"

	"rough/internal/event"
)

// ErrMalformedStream is the panic payload (wrapped) when the upstream source
// ends while a paragraph or image is still open.
var ErrMalformedStream = errors.New("malformed event stream")

// Normalizer wraps an event.Source and is itself an event.Source. Events
// that are not the wrapper of a lone image pass through once, in order.
type Normalizer struct {
	src event.Source
	// events pulled from src but not yet handed to the caller
	buf deque
}

// New wraps src.
func New(src event.Source) *Normalizer {
	return &Normalizer{src: src}
}

// Next returns the next event of the transformed stream.
//
// Next panics with an error wrapping ErrMalformedStream if src ends inside
// an open paragraph or image. Streams produced by event.Walk never do.
func (n *Normalizer) Next() (event.Event, bool) {
	if ev, ok := n.buf.popFront(); ok {
		return ev, true
	}
	ev, ok := n.src.Next()
	if !ok {
		return event.Event{}, false
	}
	if ev.IsStart(ast.KindParagraph) {
		return n.onParagraphStart(ev), true
	}
	return ev, true
}

// onParagraphStart looks ahead far enough to decide whether para wraps a
// single image. It returns the event to yield now and always leaves at
// least one event in the buffer.
func (n *Normalizer) onParagraphStart(para event.Event) event.Event {
	first := n.pull("paragraph")
	n.buf.pushBack(first)
	if !first.IsStart(ast.KindImage) {
		return para
	}
	n.bufferUntilEnd(first.Node)

	next := n.pull("paragraph")
	if !next.IsEnd(ast.KindParagraph) {
		n.buf.pushFront(para)
		n.buf.pushBack(next)
	}
	ev, _ := n.buf.popFront()
	return ev
}

// bufferUntilEnd buffers events up to and including the End event of img.
func (n *Normalizer) bufferUntilEnd(img ast.Node) {
	for {
		ev := n.pull("image")
		n.buf.pushBack(ev)
		if ev.Kind == event.End && ev.Node == img {
			return
		}
	}
}

func (n *Normalizer) pull(open string) event.Event {
	ev, ok := n.src.Next()
	if !ok {
		panic(fmt.Errorf("%w: stream ended with unclosed %s", ErrMalformedStream, open))
	}
	return ev
}
