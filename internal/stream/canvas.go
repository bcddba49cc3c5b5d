package stream

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/JPM1118/reel/internal/player"
)

// maxPixels is the largest matrix the uint16 pixel count can describe.
const maxPixels = 1<<16 - 1

// Publisher is the part of mqtt.Client the canvas uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Options configures a Canvas.
type Options struct {
	FrameTopic  string
	EventsTopic string
	Width       int
	Height      int
	QoS         byte
	Timeout     time.Duration // per publish, default 5s
	Logger      *slog.Logger
}

// Canvas draws frames onto an LED matrix listening on MQTT. Each frame is
// scaled to Width x Height and sent as a uint16 little-endian pixel count
// followed by one RGB triple per pixel, row by row.
type Canvas struct {
	pub  Publisher
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	frame   *image.RGBA
	sent    int
	lastErr error
}

// NewCanvas creates a canvas publishing through pub.
func NewCanvas(pub Publisher, opts Options) (*Canvas, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid matrix size %dx%d", opts.Width, opts.Height)
	}
	if opts.Width*opts.Height > maxPixels {
		return nil, fmt.Errorf("matrix %dx%d exceeds %d pixels", opts.Width, opts.Height, maxPixels)
	}
	if opts.FrameTopic == "" {
		return nil, fmt.Errorf("frame topic is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Canvas{
		pub:   pub,
		opts:  opts,
		log:   log,
		frame: image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}, nil
}

// Draw scales region r of src to the matrix and publishes it.
func (c *Canvas) Draw(src image.Image, r image.Rectangle) {
	c.mu.Lock()
	dst := image.NewRGBA(c.frame.Bounds())
	r = r.Intersect(src.Bounds())
	if !r.Empty() {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, r, draw.Src, nil)
	}
	c.frame = dst
	payload := Encode(dst)
	c.mu.Unlock()

	err := c.publish(c.opts.FrameTopic, payload)

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
	} else {
		c.sent++
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("frame publish failed", "topic", c.opts.FrameTopic, "error", err)
	}
}

// Frame returns the last scaled frame.
func (c *Canvas) Frame() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Sent returns how many frames were published successfully.
func (c *Canvas) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Err returns the most recent publish error.
func (c *Canvas) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Encode converts img into the matrix wire format.
func Encode(img *image.RGBA) []byte {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	data := make([]byte, 2, 2+n*3)
	binary.LittleEndian.PutUint16(data, uint16(n))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.RGBAAt(x, y)
			r, g, bl := colorful.Color{
				R: float64(p.R) / 255,
				G: float64(p.G) / 255,
				B: float64(p.B) / 255,
			}.Clamped().RGB255()
			data = append(data, r, g, bl)
		}
	}
	return data
}

// EventMessage is the JSON body published for each player event.
type EventMessage struct {
	Event     string    `json:"event"`
	Frame     int       `json:"frame"`
	Total     int       `json:"total"`
	ElapsedMS int64     `json:"elapsed_ms,omitempty"`
	Time      time.Time `json:"time"`
}

// Attach publishes every event of p to the events topic. It is a no-op
// when no events topic is configured.
func (c *Canvas) Attach(p *player.Player) {
	if c.opts.EventsTopic == "" {
		return
	}
	for _, name := range []player.EventName{
		player.EventPlay, player.EventPause, player.EventResume,
		player.EventEnd, player.EventDownloadComplete,
	} {
		p.On(name, func(e player.Event) {
			st := p.State()
			msg := EventMessage{
				Event:     string(e.Name),
				Frame:     st.Current,
				Total:     st.Total,
				ElapsedMS: e.Elapsed.Milliseconds(),
				Time:      time.Now().UTC(),
			}
			if err := c.PublishEvent(msg); err != nil {
				c.log.Warn("event publish failed", "event", e.Name, "error", err)
			}
		})
	}
}

// PublishEvent sends msg to the events topic.
func (c *Canvas) PublishEvent(msg EventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return c.publish(c.opts.EventsTopic, body)
}

func (c *Canvas) publish(topic string, payload []byte) error {
	token := c.pub.Publish(topic, c.opts.QoS, false, payload)
	if !token.WaitTimeout(c.opts.Timeout) {
		return fmt.Errorf("publishing to %s: timed out after %s", topic, c.opts.Timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
