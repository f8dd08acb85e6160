package inlineimg

import "rough/internal/event"

// deque is a FIFO of events that also accepts pushes at the front. It only
// ever holds the events of one paragraph lookahead.
type deque struct {
	items []event.Event
	head  int
}

func (d *deque) len() int { return len(d.items) - d.head }

func (d *deque) pushBack(ev event.Event) {
	d.items = append(d.items, ev)
}

func (d *deque) pushFront(ev event.Event) {
	if d.head > 0 {
		d.head--
		d.items[d.head] = ev
		return
	}
	d.items = append([]event.Event{ev}, d.items...)
}

func (d *deque) popFront() (event.Event, bool) {
	if d.len() == 0 {
		return event.Event{}, false
	}
	ev := d.items[d.head]
	d.items[d.head] = event.Event{}
	d.head++
	if d.head == len(d.items) {
		// empty again: reuse the backing array
		d.items = d.items[:0]
		d.head = 0
	}
	return ev, true
}
