package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	start := time.Unix(1000, 0)
	c := Fake(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(30 * time.Second)
	if got := c.Now().Unix(); got != 1030 {
		t.Errorf("after Advance: Now().Unix() = %d, want 1030", got)
	}

	c.Set(time.Unix(999, 0))
	if got := c.Now().Unix(); got != 999 {
		t.Errorf("after Set: Now().Unix() = %d, want 999", got)
	}
}
