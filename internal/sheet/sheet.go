package sheet

import (
	"image"
	"sync"
)

// Grid dimensions of every sprite sheet.
const (
	Columns = 5
	Rows    = 5

	// FramesPerSheet is the number of frames sliced out of one sheet.
	FramesPerSheet = Columns * Rows
)

// Sheet is one downloaded sprite-sheet image.
type Sheet struct {
	URL string

	mu  sync.RWMutex
	img image.Image
}

// New wraps a decoded image.
func New(url string, img image.Image) *Sheet {
	return &Sheet{URL: url, img: img}
}

// Image returns the decoded image, or nil once the sheet is released.
func (s *Sheet) Image() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Release drops the decoded image so it can be collected.
func (s *Sheet) Release() {
	s.mu.Lock()
	s.img = nil
	s.mu.Unlock()
}

// Released reports whether Release has been called.
func (s *Sheet) Released() bool {
	return s.Image() == nil
}

// Frame locates one frame within its source sheet.
type Frame struct {
	Sheet *Sheet
	X     int
	Y     int
}

// Bounds returns the source rectangle of a w x h frame.
func (f Frame) Bounds(w, h int) image.Rectangle {
	return image.Rect(f.X, f.Y, f.X+w, f.Y+h)
}

// Slice cuts a sheet into FramesPerSheet frames of w x h, row-major.
// The image size is not checked; frames past the edge are still produced.
func Slice(s *Sheet, w, h int) []Frame {
	frames := make([]Frame, 0, FramesPerSheet)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			frames = append(frames, Frame{
				Sheet: s,
				X:     col * w,
				Y:     row * h,
			})
		}
	}
	return frames
}
