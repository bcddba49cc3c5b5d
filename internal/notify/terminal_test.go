package notify

import (
	"bytes"
	"testing"
	"time"
)

func testBell(debounce time.Duration, events ...string) (*Bell, *bytes.Buffer) {
	var buf bytes.Buffer
	b := NewBell(debounce, events)
	b.SetOutput(&buf)
	return b, &buf
}

func TestBell_RingOnTriggerEvent(t *testing.T) {
	b, buf := testBell(30*time.Second, "end", "downloadcomplete")

	if !b.Ring("end", time.Now()) {
		t.Error("end should trigger bell")
	}
	if buf.String() != "\a" {
		t.Errorf("bell output = %q, want BEL", buf.String())
	}
}

func TestBell_NoRingOnOtherEvents(t *testing.T) {
	b, buf := testBell(30*time.Second, "end")
	now := time.Now()

	for _, e := range []string{"play", "pause", "resume"} {
		if b.Ring(e, now) {
			t.Errorf("%s should not trigger bell", e)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestBell_Debounce(t *testing.T) {
	b, _ := testBell(30*time.Second, "end")
	now := time.Now()

	if !b.Ring("end", now) {
		t.Error("first ring should succeed")
	}
	if b.Ring("end", now.Add(10*time.Second)) {
		t.Error("ring within debounce window should be suppressed")
	}
	if !b.Ring("end", now.Add(31*time.Second)) {
		t.Error("ring after debounce window should succeed")
	}
}

func TestBell_Nil(t *testing.T) {
	var b *Bell
	if b.Ring("end", time.Now()) {
		t.Error("nil bell should never ring")
	}
}
