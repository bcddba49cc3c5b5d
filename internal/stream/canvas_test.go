package stream

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JPM1118/reel/internal/config"
	"github.com/JPM1118/reel/internal/player"
	"github.com/JPM1118/reel/internal/testutil"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.timeout {
		close(ch)
	}
	return ch
}

type message struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	token    *fakeToken
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message{topic: topic, qos: qos, payload: payload.([]byte)})
	if f.token != nil {
		return f.token
	}
	return &fakeToken{}
}

func (f *fakePublisher) on(topic string) []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []message
	for _, m := range f.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func testOptions() Options {
	return Options{
		FrameTopic:  "reel/frames",
		EventsTopic: "reel/events",
		Width:       4,
		Height:      2,
		QoS:         1,
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestNewCanvas_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		errMsg string
	}{
		{"zero width", func(o *Options) { o.Width = 0 }, "invalid matrix size"},
		{"too many pixels", func(o *Options) { o.Width, o.Height = 300, 300 }, "exceeds"},
		{"no topic", func(o *Options) { o.FrameTopic = "" }, "frame topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)
			_, err := NewCanvas(&fakePublisher{}, opts)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{0xff, 0, 0, 0xff})
	img.SetRGBA(1, 0, color.RGBA{0, 0xff, 0, 0xff})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 0xff, 0xff})
	img.SetRGBA(1, 1, color.RGBA{0x10, 0x05, 0x05, 0xff})

	data := Encode(img)
	if len(data) != 2+4*3 {
		t.Fatalf("len = %d, want 14", len(data))
	}
	if n := binary.LittleEndian.Uint16(data); n != 4 {
		t.Errorf("pixel count = %d, want 4", n)
	}
	want := []byte{0xff, 0, 0, 0, 0xff, 0, 0, 0, 0xff, 0x10, 0x05, 0x05}
	for i, b := range want {
		if data[2+i] != b {
			t.Errorf("byte %d = %#x, want %#x", 2+i, data[2+i], b)
		}
	}
}

func TestCanvas_DrawPublishesScaledFrame(t *testing.T) {
	pub := &fakePublisher{}
	c, err := NewCanvas(pub, testOptions())
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}

	src := solid(256, 144, color.RGBA{0x20, 0x40, 0x60, 0xff})
	c.Draw(src, image.Rect(128, 72, 256, 144))

	msgs := pub.on("reel/frames")
	if len(msgs) != 1 {
		t.Fatalf("frames published = %d, want 1", len(msgs))
	}
	if msgs[0].qos != 1 {
		t.Errorf("qos = %d, want 1", msgs[0].qos)
	}
	data := msgs[0].payload
	if len(data) != 2+8*3 {
		t.Fatalf("payload len = %d, want 26", len(data))
	}
	if data[2] != 0x20 || data[3] != 0x40 || data[4] != 0x60 {
		t.Errorf("first pixel = %v, want 20 40 60", data[2:5])
	}
	if c.Sent() != 1 || c.Err() != nil {
		t.Errorf("Sent() = %d, Err() = %v", c.Sent(), c.Err())
	}
	if b := c.Frame().Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("frame bounds = %v", b)
	}
}

func TestCanvas_DrawOutsideSourceIsBlack(t *testing.T) {
	pub := &fakePublisher{}
	c, _ := NewCanvas(pub, testOptions())

	c.Draw(solid(128, 72, color.RGBA{0xff, 0xff, 0xff, 0xff}), image.Rect(500, 500, 628, 572))

	data := pub.on("reel/frames")[0].payload
	for i, b := range data[2:] {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i+2, b)
		}
	}
}

func TestCanvas_PublishErrors(t *testing.T) {
	tests := []struct {
		name   string
		token  *fakeToken
		errMsg string
	}{
		{"broker error", &fakeToken{err: errors.New("not connected")}, "not connected"},
		{"timeout", &fakeToken{timeout: true}, "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{token: tt.token}
			c, _ := NewCanvas(pub, testOptions())

			c.Draw(solid(8, 8, color.RGBA{A: 0xff}), image.Rect(0, 0, 8, 8))

			if err := c.Err(); err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Err() = %v, want containing %q", err, tt.errMsg)
			}
			if c.Sent() != 0 {
				t.Errorf("Sent() = %d, want 0", c.Sent())
			}
		})
	}
}

func TestCanvas_AttachPublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	c, _ := NewCanvas(pub, testOptions())

	p := player.New(&testutil.MockFetcher{}, testutil.Refs(1), c, player.Options{})
	defer p.Close()
	c.Attach(p)

	if err := p.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p.Pause()

	events := pub.on("reel/events")
	if len(events) != 3 {
		t.Fatalf("events published = %d, want 3", len(events))
	}
	var names []string
	for _, m := range events {
		var msg EventMessage
		if err := json.Unmarshal(m.payload, &msg); err != nil {
			t.Fatalf("unmarshal %q: %v", m.payload, err)
		}
		if msg.Total != 25 {
			t.Errorf("%s total = %d, want 25", msg.Event, msg.Total)
		}
		names = append(names, msg.Event)
	}
	if got := strings.Join(names, ","); got != "downloadcomplete,play,pause" {
		t.Errorf("events = %s, want downloadcomplete,play,pause", got)
	}
}

func TestCanvas_AttachWithoutTopic(t *testing.T) {
	pub := &fakePublisher{}
	opts := testOptions()
	opts.EventsTopic = ""
	c, _ := NewCanvas(pub, opts)

	p := player.New(&testutil.MockFetcher{}, testutil.Refs(1), c, player.Options{})
	defer p.Close()
	c.Attach(p)
	p.Pause()

	if n := len(pub.on("")); n != 0 {
		t.Errorf("published %d messages to an empty topic", n)
	}
}

func TestClientID(t *testing.T) {
	a, b := ClientID(), ClientID()
	if !strings.HasPrefix(a, "reel-") || len(a) != len("reel-")+36 {
		t.Errorf("ClientID() = %q", a)
	}
	if a == b {
		t.Error("client ids should be unique")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := config.Defaults().Stream
	cfg.Username = "led"
	opts := ClientOptions(cfg, nil)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != cfg.Broker {
		t.Errorf("Servers = %v, want %s", opts.Servers, cfg.Broker)
	}
	if opts.Username != "led" {
		t.Errorf("Username = %q", opts.Username)
	}
	if !strings.HasPrefix(opts.ClientID, "reel-") {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
}
