package render

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// halfBlock paints the top pixel as foreground, bottom pixel as background.
const halfBlock = "▀"

// Raster is a terminal canvas. Each cell shows two vertically stacked
// pixels, so a cols x rows raster holds a cols x 2*rows image.
type Raster struct {
	mu       sync.Mutex
	cols     int
	rows     int
	img      *image.RGBA
	rendered string
	scaler   draw.Scaler
}

// NewRaster creates a blank raster of cols x rows cells.
func NewRaster(cols, rows int) *Raster {
	r := &Raster{scaler: draw.ApproxBiLinear}
	r.Resize(cols, rows)
	return r
}

// Size returns the raster size in cells.
func (r *Raster) Size() (cols, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cols, r.rows
}

// Resize changes the cell size and clears the picture.
func (r *Raster) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.img != nil && cols == r.cols && rows == r.rows {
		return
	}
	r.cols, r.rows = cols, rows
	r.img = image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	r.rendered = r.renderLocked()
}

// Draw scales region sr of src onto the whole raster. The region is
// clipped to src; a region entirely outside src blanks the raster.
func (r *Raster) Draw(src image.Image, sr image.Rectangle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst := image.NewRGBA(r.img.Bounds())
	sr = sr.Intersect(src.Bounds())
	if !sr.Empty() && !dst.Bounds().Empty() {
		r.scaler.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
	}
	r.img = dst
	r.rendered = r.renderLocked()
}

// At returns the pixel at (x, y) of the scaled picture.
func (r *Raster) At(x, y int) color.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img.RGBAAt(x, y)
}

// String returns the picture as rows of ANSI-styled half blocks.
func (r *Raster) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rendered
}

func (r *Raster) renderLocked() string {
	if r.cols == 0 || r.rows == 0 {
		return ""
	}
	var b strings.Builder
	for y := 0; y < r.rows; y++ {
		if y > 0 {
			b.WriteString("\n")
		}
		for x := 0; x < r.cols; x++ {
			top := r.img.RGBAAt(x, 2*y)
			bottom := r.img.RGBAAt(x, 2*y+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(Hex(top))).
				Background(lipgloss.Color(Hex(bottom))).
				Render(halfBlock))
		}
	}
	return b.String()
}

// Hex formats c as "#rrggbb", ignoring alpha.
func Hex(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
