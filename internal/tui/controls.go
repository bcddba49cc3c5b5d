package tui

import (
	"fmt"
	"strings"

	"github.com/JPM1118/reel/internal/player"
)

// Region identifies the part of the control bar under a click.
type Region int

const (
	RegionNone Region = iota
	RegionToggle
	RegionProgress
)

// toggleWidth is "[" + two-cell icon + "]".
const toggleWidth = 4

// ControlBar is the toggle button plus the seekable progress bar. It is
// owned by the Screen and built on the first layout.
type ControlBar struct {
	width int
	row   int
}

func newControlBar() *ControlBar {
	return &ControlBar{}
}

// Layout places the bar on screen row `row`, spanning `width` cells.
func (c *ControlBar) Layout(width, row int) {
	c.width = width
	c.row = row
}

// Row returns the screen row of the bar.
func (c *ControlBar) Row() int {
	return c.row
}

// geometry returns the progress track start column and width for a
// sequence of total frames.
func (c *ControlBar) geometry(total int) (start, width int) {
	start = toggleWidth + 1
	counter := len(counterText(total, total))
	width = c.width - start - 1 - counter
	if width < 1 {
		width = 1
	}
	return start, width
}

// HitTest maps a click at (x, y) to a region. For RegionProgress the
// returned offset is relative to the start of the track.
func (c *ControlBar) HitTest(x, y, total int) (Region, int) {
	if y != c.row {
		return RegionNone, 0
	}
	if x >= 0 && x < toggleWidth {
		return RegionToggle, 0
	}
	start, width := c.geometry(total)
	if x >= start && x < start+width {
		return RegionProgress, x - start
	}
	return RegionNone, 0
}

// SeekTarget returns the frame a click at track offset lands on.
func (c *ControlBar) SeekTarget(offset, total int) int {
	_, width := c.geometry(total)
	return player.SeekIndex(offset, width, total)
}

// Render draws the bar for the given state.
func (c *ControlBar) Render(st player.State) string {
	_, width := c.geometry(st.Total)

	filled := 0
	if st.Total > 0 {
		filled = st.Current * width / st.Total
	}
	if filled > width {
		filled = width
	}

	var b strings.Builder
	b.WriteString(toggleStyle(st.Paused).Render("[" + toggleIcon(st.Paused) + "]"))
	b.WriteString(" ")
	b.WriteString(progressFillStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(progressTrackStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString(" ")
	b.WriteString(subheaderStyle.Render(padLeft(counterText(st.Current, st.Total), len(counterText(st.Total, st.Total)))))
	return b.String()
}

func counterText(current, total int) string {
	return fmt.Sprintf("%d/%d", current, total)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
