package broadcast

import (
	"errors"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message within 1s")
	}
	return nil
}

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	a, _ := hub.Subscribe("t")
	b, _ := hub.Subscribe("t")
	other, _ := hub.Subscribe("u")

	if n := hub.Publish("t", []byte("m1")); n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}
	if got := receive(t, a); string(got) != "m1" {
		t.Fatalf("a got %q", got)
	}
	if got := receive(t, b); string(got) != "m1" {
		t.Fatalf("b got %q", got)
	}
	select {
	case msg := <-other.C():
		t.Fatalf("other topic received %q", msg)
	default:
	}
}

func TestHub_NoReplay(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	hub.Publish("t", []byte("before"))
	sub, _ := hub.Subscribe("t")
	hub.Publish("t", []byte("after"))

	if got := receive(t, sub); string(got) != "after" {
		t.Fatalf("got %q, want only messages published after subscribing", got)
	}
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	hub := NewHub(2)
	defer hub.Close()

	slow, _ := hub.Subscribe("t")
	fast, _ := hub.Subscribe("t")

	for i := 0; i < 3; i++ {
		hub.Publish("t", []byte{byte('0' + i)})
		<-fast.C()
	}

	if got := receive(t, slow); string(got) != "0" {
		t.Fatalf("first = %q", got)
	}
	if got := receive(t, slow); string(got) != "1" {
		t.Fatalf("second = %q", got)
	}
	select {
	case msg := <-slow.C():
		t.Fatalf("overflow message delivered: %q", msg)
	default:
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	sub, _ := hub.Subscribe("t")
	if hub.Subscribers("t") != 1 {
		t.Fatal("subscriber not counted")
	}

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	if hub.Subscribers("t") != 0 {
		t.Fatal("subscriber still counted")
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("channel not closed")
	}
	if n := hub.Publish("t", []byte("x")); n != 0 {
		t.Fatalf("delivered to %d after unsubscribe", n)
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(1)
	sub, _ := hub.Subscribe("t")

	hub.Close()
	hub.Close()

	if _, ok := <-sub.C(); ok {
		t.Fatal("channel not closed by Close")
	}
	if _, err := hub.Subscribe("t"); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("Subscribe after Close err = %v", err)
	}
	// Unsubscribing after Close must not double-close.
	hub.Unsubscribe(sub)
}
