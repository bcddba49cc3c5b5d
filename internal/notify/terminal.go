package notify

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Bell rings the terminal bell for selected events, with debounce.
type Bell struct {
	out       io.Writer
	debounce  time.Duration
	lastRing  time.Time
	triggerOn map[string]bool
}

// NewBell creates a Bell with the given debounce interval and trigger events.
func NewBell(debounce time.Duration, events []string) *Bell {
	triggerOn := make(map[string]bool, len(events))
	for _, e := range events {
		triggerOn[e] = true
	}
	return &Bell{
		out:       os.Stderr,
		debounce:  debounce,
		triggerOn: triggerOn,
	}
}

// SetOutput redirects the bell character, mainly for tests.
func (b *Bell) SetOutput(w io.Writer) {
	b.out = w
}

// Ring attempts to ring the terminal bell for the given event.
// Returns true if the bell actually rang.
func (b *Bell) Ring(event string, now time.Time) bool {
	if b == nil || !b.triggerOn[event] {
		return false
	}
	if !b.lastRing.IsZero() && now.Sub(b.lastRing) < b.debounce {
		return false
	}

	fmt.Fprint(b.out, "\a")
	b.lastRing = now
	return true
}
