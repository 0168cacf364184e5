// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package videorender

// Event is a notification for the display layer.
type Event uint8

const (
	// EventRenderTargetsReset means the device failed and the renderer
	// must be torn down and recreated.
	EventRenderTargetsReset Event = iota + 1
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventRenderTargetsReset:
		return "RenderTargetsReset"
	default:
		return "Unknown"
	}
}

// events is a coalescing mailbox. A pending event absorbs later ones.
type events chan Event

func newEvents() events { return make(events, 1) }

// post delivers e unless an event is already pending.
func (ev events) post(e Event) bool {
	select {
	case ev <- e:
		return true
	default:
		return false
	}
}
