package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JPM1118/reel/internal/notify"
	"github.com/JPM1118/reel/internal/player"
	"github.com/JPM1118/reel/internal/render"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minWidth    = 40
	minHeight   = 10
	headerLines = 1 // title + state
	footerLines = 3 // control bar + notification bar + status bar
)

// Messages

type frameTickMsg time.Time

type playerEventMsg struct {
	event player.Event
	at    time.Time
}

type playDoneMsg struct {
	err error
}

type seekDoneMsg struct {
	err error
}

// loadProgress is written by the downloader goroutine and read by View.
type loadProgress struct {
	mu          sync.Mutex
	done, total int
}

func (l *loadProgress) set(done, total int) {
	l.mu.Lock()
	l.done, l.total = done, total
	l.mu.Unlock()
}

func (l *loadProgress) get() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done, l.total
}

// Option configures a Screen.
type Option func(*Screen)

// WithBell rings the terminal bell on configured events.
func WithBell(b *notify.Bell) Option {
	return func(s *Screen) { s.bell = b }
}

// WithNotifyBar shows recent events under the control bar.
func WithNotifyBar(b *notify.Bar) Option {
	return func(s *Screen) { s.notes = b }
}

// WithRefresh sets how often the view repaints.
func WithRefresh(d time.Duration) Option {
	return func(s *Screen) { s.refresh = d }
}

// WithContext bounds downloads and seeks started by the screen.
func WithContext(ctx context.Context) Option {
	return func(s *Screen) { s.ctx = ctx }
}

// Screen is the Bubble Tea model of the player: a raster canvas with a
// control bar beneath it.
type Screen struct {
	player   *player.Player
	raster   *render.Raster
	controls *ControlBar
	notes    *notify.Bar
	bell     *notify.Bell
	events   chan playerEventMsg
	progress *loadProgress
	refresh  time.Duration
	ctx      context.Context
	width    int
	height   int
	lastErr  string
}

// NewScreen creates the player screen. raster must be the canvas p draws to.
func NewScreen(p *player.Player, raster *render.Raster, opts ...Option) Screen {
	s := Screen{
		player:   p,
		raster:   raster,
		events:   make(chan playerEventMsg, 16),
		progress: &loadProgress{},
		refresh:  time.Second / 30,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	for _, name := range []player.EventName{
		player.EventPlay, player.EventPause, player.EventResume,
		player.EventEnd, player.EventDownloadComplete,
	} {
		p.On(name, forward(s.events))
	}
	p.Downloader().Progress = s.progress.set
	return s
}

// forward pushes player events to the screen without ever blocking the
// player. When the buffer is full the event is dropped.
func forward(ch chan<- playerEventMsg) func(player.Event) {
	return func(e player.Event) {
		select {
		case ch <- playerEventMsg{event: e, at: time.Now()}:
		default:
		}
	}
}

// Err returns the last playback error shown to the user, if any.
func (s Screen) Err() string {
	return s.lastErr
}

// Init starts the download and the repaint ticker.
func (s Screen) Init() tea.Cmd {
	return tea.Batch(s.playCmd(), s.waitForEvent(), s.tick())
}

func (s Screen) playCmd() tea.Cmd {
	p, ctx := s.player, s.ctx
	return func() tea.Msg {
		return playDoneMsg{err: p.Play(ctx)}
	}
}

func (s Screen) seekCmd(index int) tea.Cmd {
	p, ctx := s.player, s.ctx
	return func() tea.Msg {
		return seekDoneMsg{err: p.GotoFrame(ctx, index)}
	}
}

func (s Screen) waitForEvent() tea.Cmd {
	ch := s.events
	return func() tea.Msg {
		return <-ch
	}
}

func (s Screen) tick() tea.Cmd {
	return tea.Tick(s.refresh, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// Update handles messages.
func (s Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return s.handleKey(msg)

	case tea.MouseMsg:
		return s.handleMouse(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.layout()
		return s, nil

	case frameTickMsg:
		return s, s.tick()

	case playerEventMsg:
		if s.notes != nil {
			s.notes.Push(notify.Notification{
				Event:     string(msg.event.Name),
				Detail:    eventDetail(msg.event),
				Timestamp: msg.at,
			})
		}
		s.bell.Ring(string(msg.event.Name), msg.at)
		return s, s.waitForEvent()

	case playDoneMsg:
		if msg.err != nil {
			s.lastErr = fmt.Sprintf("Playback error: %s", msg.err.Error())
		} else if s.player.State().Total == 0 {
			s.lastErr = "No frames loaded"
		} else {
			s.lastErr = ""
		}
		return s, nil

	case seekDoneMsg:
		if msg.err != nil {
			s.lastErr = fmt.Sprintf("Seek error: %s", msg.err.Error())
		}
		return s, nil
	}

	return s, nil
}

// layout builds the control bar on first use and sizes the canvas.
func (s *Screen) layout() {
	if s.controls == nil {
		s.controls = newControlBar()
	}
	rows := s.height - headerLines - footerLines
	if rows < 0 {
		rows = 0
	}
	s.raster.Resize(s.width, rows)
	s.controls.Layout(s.width, headerLines+rows)
	s.player.Redraw()
}

func (s Screen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := s.player.State()

	switch msg.String() {
	case "q", "ctrl+c":
		return s, tea.Quit

	case " ", "p":
		if !st.Loaded && !st.Downloading {
			return s, s.playCmd()
		}
		s.player.Toggle()
		return s, nil

	case "left", "h":
		if st.Current > 0 {
			return s, s.seekCmd(st.Current - 1)
		}
		return s, nil

	case "right", "l":
		if st.Total > 0 && st.Current < st.Total-1 {
			return s, s.seekCmd(st.Current + 1)
		}
		return s, nil

	case "home", "g", "0":
		return s, s.seekCmd(0)

	case "end", "G":
		if st.Total > 0 {
			return s, s.seekCmd(st.Total - 1)
		}
		return s, nil
	}

	return s, nil
}

func (s Screen) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return s, nil
	}
	if s.controls == nil {
		return s, nil
	}

	st := s.player.State()
	region, offset := s.controls.HitTest(msg.X, msg.Y, st.Total)
	switch region {
	case RegionProgress:
		return s, s.seekCmd(s.controls.SeekTarget(offset, st.Total))
	default:
		// The toggle button and the rest of the player area both toggle.
		s.player.Toggle()
		return s, nil
	}
}

// View renders the player.
func (s Screen) View() string {
	if s.width < minWidth || s.height < minHeight {
		return fmt.Sprintf("\n  Terminal too small (need %dx%d, got %dx%d)\n", minWidth, minHeight, s.width, s.height)
	}
	if s.controls == nil {
		return "\n  Loading...\n"
	}

	st := s.player.State()
	var b strings.Builder

	b.WriteString(s.renderHeader(st))
	b.WriteString("\n")

	_, rows := s.raster.Size()
	b.WriteString(s.renderCanvas(st, rows))
	b.WriteString("\n")

	b.WriteString(s.controls.Render(st))
	b.WriteString("\n")

	b.WriteString(s.renderNotificationBar())
	b.WriteString("\n")

	b.WriteString(s.renderStatusBar())

	return b.String()
}

func (s Screen) renderHeader(st player.State) string {
	title := headerStyle.Render("reel")

	var state string
	switch {
	case st.Downloading:
		done, total := s.progress.get()
		state = fmt.Sprintf("Loading sheets %d/%d", done, total)
	case !st.Loaded:
		state = "No frames"
	case st.Paused:
		state = "Paused"
	default:
		state = "Playing"
	}
	right := subheaderStyle.Render(state)

	gap := s.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (s Screen) renderCanvas(st player.State, rows int) string {
	if !st.Loaded {
		msg := "  Loading frames...\n"
		if !st.Downloading && s.lastErr != "" {
			msg = "  Nothing to play.\n\n  Check the image list in your config.\n"
		}
		return strings.TrimSuffix(padLines(msg, rows), "\n")
	}
	return s.raster.String()
}

func (s Screen) renderNotificationBar() string {
	if s.lastErr != "" {
		return errorStyle.Render("  " + truncate(s.lastErr, s.width-4))
	}
	if s.notes == nil {
		return notificationBarStyle.Render("")
	}
	return notificationBarStyle.Render("  " + s.notes.Render(s.width-4, time.Now()))
}

func (s Screen) renderStatusBar() string {
	return statusBarStyle.Render("  space:play/pause  ←/→:step  g/G:first/last  click bar:seek  q:quit")
}

func eventDetail(e player.Event) string {
	if e.Name == player.EventDownloadComplete {
		return e.Elapsed.Round(time.Millisecond).String()
	}
	return ""
}

// Helpers

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}

func padLines(content string, height int) string {
	lines := strings.Count(content, "\n")
	padding := height - lines
	if padding > 0 {
		content += strings.Repeat("\n", padding)
	}
	return content
}
