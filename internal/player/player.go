package player

import (
	"context"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JPM1118/reel/internal/sheet"
)

// Canvas receives redraws. Draw scales the r region of src to the
// canvas's own size.
type Canvas interface {
	Draw(src image.Image, r image.Rectangle)
}

// Options configures a Player. Zero values take the defaults below.
type Options struct {
	FPS         int // default 10
	RefreshRate int // loop ticks per second, default 60
	FrameWidth  int // default 128
	FrameHeight int // default 72

	// PlayLastFrame ends the sequence after the final frame instead of
	// wrapping as soon as it is reached.
	PlayLastFrame bool

	Clock  func() time.Time
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 10
	}
	if o.RefreshRate <= 0 {
		o.RefreshRate = 60
	}
	if o.FrameWidth <= 0 {
		o.FrameWidth = 128
	}
	if o.FrameHeight <= 0 {
		o.FrameHeight = 72
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// State is a snapshot of playback state.
type State struct {
	Current     int
	Start       int
	Total       int
	Paused      bool
	Loaded      bool
	Downloading bool
}

// Player plays sprite-sheet frames onto a Canvas.
type Player struct {
	opts       Options
	interval   time.Duration
	refresh    time.Duration
	downloader *sheet.Downloader
	refs       []string
	canvas     Canvas
	log        *slog.Logger

	mu          sync.Mutex
	sheets      []*sheet.Sheet
	frames      []sheet.Frame
	current     int
	start       int
	paused      bool
	held        bool // seek requested before frames existed
	loaded      bool
	downloading bool
	then        time.Time

	loopCancel context.CancelFunc
	loopDone   chan struct{}

	subMu sync.Mutex
	subs  map[EventName][]func(Event)
}

// New creates a paused player for the given sheet references.
// canvas may be nil.
func New(fetcher sheet.Fetcher, refs []string, canvas Canvas, opts Options) *Player {
	opts = opts.withDefaults()
	return &Player{
		opts:       opts,
		interval:   time.Second / time.Duration(opts.FPS),
		refresh:    time.Second / time.Duration(opts.RefreshRate),
		downloader: sheet.NewDownloader(fetcher, opts.FrameWidth, opts.FrameHeight, opts.Logger),
		refs:       refs,
		canvas:     canvas,
		log:        opts.Logger,
		paused:     true,
		subs:       make(map[EventName][]func(Event)),
	}
}

// Downloader exposes the underlying downloader, e.g. to attach progress.
func (p *Player) Downloader() *sheet.Downloader {
	return p.downloader
}

// Play downloads every sheet, then starts the loop and emits
// downloadcomplete followed by play. It blocks until the download pass
// ends. Playback begins unless a seek held the player paused.
// Calls while a download is in flight are ignored; calls after frames
// are loaded do not download again.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if p.downloading {
		p.mu.Unlock()
		return nil
	}
	if p.loaded {
		p.mu.Unlock()
		p.Start(context.Background())
		p.dispatch(Event{Name: EventPlay})
		return nil
	}
	p.downloading = true
	refs := p.refs
	p.mu.Unlock()

	res, err := p.downloader.Download(ctx, refs, func(s *sheet.Sheet, frames []sheet.Frame) {
		p.mu.Lock()
		p.sheets = append(p.sheets, s)
		p.frames = append(p.frames, frames...)
		p.mu.Unlock()
	})

	p.mu.Lock()
	p.downloading = false
	if err != nil {
		p.releaseLocked()
		p.mu.Unlock()
		return err
	}
	p.loaded = len(p.frames) > 0
	held := p.held
	p.held = false
	if held {
		p.current = p.clampLocked(p.current)
		p.start = p.current
	} else {
		p.paused = false
	}
	p.then = p.opts.Clock()
	var f sheet.Frame
	draw := held && p.loaded
	if draw {
		f = p.frames[p.current]
	}
	p.mu.Unlock()

	p.dispatch(Event{Name: EventDownloadComplete, Elapsed: res.Elapsed})
	p.Start(context.Background())
	if draw {
		p.draw(f)
	}
	p.dispatch(Event{Name: EventPlay})
	return nil
}

// Pause stops frame advancement and emits pause.
func (p *Player) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.dispatch(Event{Name: EventPause})
}

// Resume restarts frame advancement and emits resume.
func (p *Player) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.dispatch(Event{Name: EventResume})
}

// Toggle resumes a paused player and pauses a playing one.
func (p *Player) Toggle() {
	p.mu.Lock()
	paused := p.paused
	p.mu.Unlock()

	if paused {
		p.Resume()
	} else {
		p.Pause()
	}
}

// GotoFrame seeks to index and leaves the player paused. With no frames
// loaded it runs the download first and holds playback at index.
func (p *Player) GotoFrame(ctx context.Context, index int) error {
	if index < 0 {
		index = 0
	}

	p.mu.Lock()
	empty := len(p.frames) == 0 || !p.loaded
	var f sheet.Frame
	if empty {
		p.current, p.start = index, index
		p.held = true
	} else {
		p.current = p.clampLocked(index)
		p.start = p.current
		p.paused = true
		f = p.frames[p.current]
	}
	p.mu.Unlock()

	if empty {
		if err := p.Play(ctx); err != nil {
			return err
		}
	} else {
		p.draw(f)
	}

	p.Pause()
	return nil
}

// Tick runs one iteration of the playback loop at time now. When more
// than one frame interval has passed and the player is not paused, the
// current frame advances and is redrawn.
func (p *Player) Tick(now time.Time) {
	p.mu.Lock()
	delta := now.Sub(p.then)
	if delta <= p.interval {
		p.mu.Unlock()
		return
	}
	// Carry the overshoot so timing error does not accumulate.
	p.then = now.Add(-(delta % p.interval))

	if p.paused || len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}

	var events []Event
	p.current++
	if p.current >= p.endLocked() {
		p.current = 0
		p.paused = true
		events = append(events, Event{Name: EventPause}, Event{Name: EventEnd})
	}
	f := p.frames[p.current]
	p.mu.Unlock()

	p.draw(f)
	p.dispatch(events...)
}

// State returns a snapshot of playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Current:     p.current,
		Start:       p.start,
		Total:       len(p.frames),
		Paused:      p.paused,
		Loaded:      p.loaded,
		Downloading: p.downloading,
	}
}

// Redraw draws the current frame again, e.g. after the canvas resized.
func (p *Player) Redraw() {
	p.mu.Lock()
	if len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}
	f := p.frames[p.current]
	p.mu.Unlock()
	p.draw(f)
}

// endLocked is the index at which playback wraps. The default stops one
// short of the final frame, matching the established player behaviour.
func (p *Player) endLocked() int {
	if p.opts.PlayLastFrame {
		return len(p.frames)
	}
	return len(p.frames) - 1
}

func (p *Player) clampLocked(i int) int {
	if i >= len(p.frames) {
		i = len(p.frames) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (p *Player) draw(f sheet.Frame) {
	if p.canvas == nil || f.Sheet == nil {
		return
	}
	img := f.Sheet.Image()
	if img == nil {
		return
	}
	p.canvas.Draw(img, f.Bounds(p.opts.FrameWidth, p.opts.FrameHeight))
}

func (p *Player) releaseLocked() {
	for _, s := range p.sheets {
		s.Release()
	}
	p.sheets = nil
	p.frames = nil
	p.loaded = false
	p.current, p.start = 0, 0
}

// SeekIndex converts a click offset within a bar of the given width into
// a frame index in [0, total).
func SeekIndex(offset, width, total int) int {
	if width <= 0 || total <= 0 {
		return 0
	}
	i := offset * total / width
	if i >= total {
		i = total - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
