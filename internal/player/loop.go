package player

import (
	"context"
	"time"
)

// Start runs the playback loop in a goroutine until ctx is cancelled or
// Stop is called. Starting a running loop is a no-op.
func (p *Player) Start(ctx context.Context) {
	p.mu.Lock()
	if p.loopCancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.loopCancel = cancel
	p.loopDone = done
	p.mu.Unlock()

	go p.run(ctx, done)
}

// Running reports whether the loop goroutine is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopCancel != nil
}

// Stop halts the loop and waits for it to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.loopCancel, p.loopDone
	p.loopCancel, p.loopDone = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops the loop and releases every downloaded sheet.
func (p *Player) Close() {
	p.Stop()

	p.mu.Lock()
	p.releaseLocked()
	p.paused = true
	p.mu.Unlock()
}

func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.loopDone == done {
				p.loopCancel, p.loopDone = nil, nil
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.Tick(p.opts.Clock())
		}
	}
}
