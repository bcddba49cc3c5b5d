package testutil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/JPM1118/reel/internal/sheet"
)

// MockFetcher implements sheet.Fetcher for testing.
type MockFetcher struct {
	mu sync.Mutex

	// Fail lists refs whose fetch returns an error.
	Fail map[string]bool
	// Delay is slept inside every Fetch.
	Delay time.Duration
	// Width and Height size the generated sheets. Zero means 640x360.
	Width  int
	Height int

	calls       []string
	inFlight    int
	maxInFlight int
}

var _ sheet.Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Fetch(ctx context.Context, ref string) (*sheet.Sheet, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ref)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	fail := m.Fail[ref]
	delay := m.Delay
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, fmt.Errorf("fetch %s: 404 Not Found", ref)
	}
	return sheet.New(ref, m.image()), nil
}

func (m *MockFetcher) image() image.Image {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		w, h = 640, 360
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	return img
}

// Calls returns the refs fetched so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MaxInFlight returns the highest number of concurrent Fetch calls seen.
func (m *MockFetcher) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// Refs returns n sheet references "/images/0.jpg" .. "/images/n-1.jpg".
func Refs(n int) []string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("/images/%d.jpg", i)
	}
	return refs
}
