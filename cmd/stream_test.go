package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JPM1118/reel/internal/config"
	"github.com/JPM1118/reel/internal/logger"
	"github.com/JPM1118/reel/internal/stream"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// recordingBroker collects published payloads by topic.
type recordingBroker struct {
	mu     sync.Mutex
	topics map[string][][]byte
}

func (b *recordingBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics == nil {
		b.topics = make(map[string][][]byte)
	}
	b.topics[topic] = append(b.topics[topic], payload.([]byte))
	return doneToken{}
}

func (b *recordingBroker) events(t *testing.T) []string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, body := range b.topics["reel/events"] {
		var msg stream.EventMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		names = append(names, msg.Event)
	}
	return names
}

func (b *recordingBroker) frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics["reel/frames"])
}

func fastConfig(baseURL string) config.Config {
	cfg := config.Defaults()
	cfg.Player.BaseURL = baseURL
	cfg.Player.FPS = 60
	cfg.Player.RefreshRate = 240
	return cfg
}

func TestRunStream_ExitsAtEnd(t *testing.T) {
	srv := sheetServer(t)
	broker := &recordingBroker{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := runStream(ctx, fastConfig(srv.URL), broker, []string{"/0.png"}, false, logger.Discard())
	if err != nil {
		t.Fatalf("runStream: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("stream should end before the timeout")
	}

	got := strings.Join(broker.events(t), ",")
	if !strings.HasPrefix(got, "downloadcomplete,play") || !strings.HasSuffix(got, "pause,end") {
		t.Errorf("events = %s", got)
	}
	// Frames 1..23 are drawn on ticks, then frame 0 on the wrap.
	if n := broker.frames(); n != 24 {
		t.Errorf("frames published = %d, want 24", n)
	}
}

func TestRunStream_StopsOnCancel(t *testing.T) {
	srv := sheetServer(t)
	broker := &recordingBroker{}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	err := runStream(ctx, fastConfig(srv.URL), broker, []string{"/0.png"}, true, logger.Discard())
	if err != nil {
		t.Fatalf("runStream: %v", err)
	}
	if broker.frames() == 0 {
		t.Error("expected frames before cancel")
	}
}

func TestRunStream_NoFrames(t *testing.T) {
	srv := sheetServer(t, "/0.png")

	err := runStream(context.Background(), fastConfig(srv.URL), &recordingBroker{}, []string{"/0.png"}, false, logger.Discard())
	if err == nil || !strings.Contains(err.Error(), "no frames loaded") {
		t.Errorf("error = %v, want no frames error", err)
	}
}
