package notify

import (
	"strings"
	"testing"
	"time"
)

func TestBar_PushAndVisible(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Push(Notification{Event: "play", Timestamp: now})
	b.Push(Notification{Event: "pause", Timestamp: now})
	b.Push(Notification{Event: "end", Timestamp: now})

	visible := b.Visible()
	if len(visible) != 2 {
		t.Fatalf("Visible() = %d items, want 2", len(visible))
	}
	if visible[0].Event != "pause" {
		t.Errorf("visible[0].Event = %q, want pause", visible[0].Event)
	}
	if visible[1].Event != "end" {
		t.Errorf("visible[1].Event = %q, want end", visible[1].Event)
	}
}

func TestBar_VisibleEmpty(t *testing.T) {
	b := NewBar(20)
	if len(b.Visible()) != 0 {
		t.Error("empty bar should have no visible items")
	}
}

func TestBar_MaxBuffer(t *testing.T) {
	b := NewBar(3)
	now := time.Now()

	for i := 0; i < 10; i++ {
		b.Push(Notification{Event: string(rune('a' + i)), Timestamp: now})
	}

	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (max buffer)", b.Len())
	}

	visible := b.Visible()
	if visible[0].Event != "i" || visible[1].Event != "j" {
		t.Errorf("visible = %v, want [i j]", visible)
	}
}

func TestBar_Render(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Push(Notification{
		Event:     "downloadcomplete",
		Detail:    "1.2s",
		Timestamp: now.Add(-2 * time.Minute),
	})
	b.Push(Notification{Event: "end", Timestamp: now.Add(-3 * time.Second)})

	result := b.Render(80, now)
	for _, want := range []string{"downloadcomplete 1.2s", "2m ago", "end (3s ago)", " │ "} {
		if !strings.Contains(result, want) {
			t.Errorf("render should contain %q, got: %q", want, result)
		}
	}
}

func TestBar_RenderEmpty(t *testing.T) {
	b := NewBar(20)
	if b.Render(80, time.Now()) != "" {
		t.Error("empty bar should render empty string")
	}
}

func TestBar_RenderTruncation(t *testing.T) {
	b := NewBar(20)
	now := time.Now()

	b.Push(Notification{Event: "downloadcomplete", Detail: "12.345s", Timestamp: now})
	b.Push(Notification{Event: "resume", Timestamp: now})

	result := b.Render(30, now)
	runes := []rune(result)
	if len(runes) > 30 {
		t.Errorf("render should be truncated to 30 runes, got %d: %q", len(runes), result)
	}
	if !strings.HasSuffix(result, "…") {
		t.Errorf("truncated render should end with ellipsis, got %q", result)
	}
}
