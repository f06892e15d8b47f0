package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Handler handles a dispatched event.
type Handler func(ev *Event)

// Event is a dispatched DOM event.
type Event struct {
	// Type is the event name without the "on" prefix ("click", "input").
	Type string

	// Target is the element the event was dispatched on.
	Target *html.Node

	// CurrentTarget is the element whose handler is running.
	CurrentTarget *html.Node

	// Value carries the element value for input-like events.
	Value string

	stopped bool
}

// StopPropagation prevents the event from bubbling further.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// EnableHydrationIDs makes SetHandler stamp elements with data-tid.
func (d *Document) EnableHydrationIDs() {
	d.hydrate = true
}

// SetHandler installs the handler for an event type on el, replacing any
// previous one. A nil handler removes it.
func (d *Document) SetHandler(el *html.Node, typ string, h Handler) {
	typ = strings.ToLower(typ)
	if h == nil {
		if hs := d.handlers[el]; hs != nil {
			delete(hs, typ)
		}
		return
	}
	hs := d.handlers[el]
	if hs == nil {
		hs = make(map[string]Handler)
		d.handlers[el] = hs
	}
	hs[typ] = h

	if d.hydrate {
		if _, ok := Attribute(el, HIDAttr); !ok {
			hid := d.hids.Next()
			d.SetAttribute(el, HIDAttr, hid)
			d.byHID[hid] = el
		}
	}
}

// HasHandler reports whether el has a handler for typ.
func (d *Document) HasHandler(el *html.Node, typ string) bool {
	_, ok := d.handlers[el][strings.ToLower(typ)]
	return ok
}

// ElementByHID resolves a hydration ID to its element.
func (d *Document) ElementByHID(hid string) *html.Node {
	return d.byHID[hid]
}

// Dispatch fires an event at target and bubbles it through its ancestors.
// It returns the number of handlers that ran.
func (d *Document) Dispatch(target *html.Node, typ, value string) int {
	ev := &Event{Type: strings.ToLower(typ), Target: target, Value: value}
	ran := 0
	for n := target; n != nil; n = n.Parent {
		h, ok := d.handlers[n][ev.Type]
		if !ok {
			continue
		}
		ev.CurrentTarget = n
		h(ev)
		ran++
		if ev.stopped {
			break
		}
	}
	return ran
}
