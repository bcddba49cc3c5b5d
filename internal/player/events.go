package player

import (
	"fmt"
	"time"
)

// EventName identifies a player notification.
type EventName string

const (
	EventPlay             EventName = "play"
	EventPause            EventName = "pause"
	EventResume           EventName = "resume"
	EventEnd              EventName = "end"
	EventDownloadComplete EventName = "downloadcomplete"
)

// Event is delivered to generic subscribers. Elapsed is only set for
// EventDownloadComplete.
type Event struct {
	Name    EventName
	Elapsed time.Duration
}

func (e EventName) valid() bool {
	switch e {
	case EventPlay, EventPause, EventResume, EventEnd, EventDownloadComplete:
		return true
	}
	return false
}

// On subscribes fn to the named event.
func (p *Player) On(name EventName, fn func(Event)) error {
	if !name.valid() {
		return fmt.Errorf("unknown event %q", name)
	}
	p.subMu.Lock()
	defer p.subMu.Unlock()
	p.subs[name] = append(p.subs[name], fn)
	return nil
}

// OnPlay subscribes fn to playback start after download.
func (p *Player) OnPlay(fn func()) { p.mustOn(EventPlay, func(Event) { fn() }) }

// OnPause subscribes fn to pauses, including the automatic pause at the end.
func (p *Player) OnPause(fn func()) { p.mustOn(EventPause, func(Event) { fn() }) }

// OnResume subscribes fn to resumes.
func (p *Player) OnResume(fn func()) { p.mustOn(EventResume, func(Event) { fn() }) }

// OnEnd subscribes fn to end-of-sequence wraparounds.
func (p *Player) OnEnd(fn func()) { p.mustOn(EventEnd, func(Event) { fn() }) }

// OnDownloadComplete subscribes fn to the end of the download pass.
func (p *Player) OnDownloadComplete(fn func(elapsed time.Duration)) {
	p.mustOn(EventDownloadComplete, func(e Event) { fn(e.Elapsed) })
}

func (p *Player) mustOn(name EventName, fn func(Event)) {
	if err := p.On(name, fn); err != nil {
		panic(err)
	}
}

// dispatch calls subscribers. Must be called without p.mu held.
func (p *Player) dispatch(events ...Event) {
	for _, e := range events {
		p.subMu.Lock()
		handlers := make([]func(Event), len(p.subs[e.Name]))
		copy(handlers, p.subs[e.Name])
		p.subMu.Unlock()

		p.log.Debug("player event", "event", string(e.Name))
		for _, fn := range handlers {
			fn(e)
		}
	}
}
