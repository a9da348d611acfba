package orientation

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestStamper_TracksMockClock(t *testing.T) {
	mock := clock.NewMock()
	st := NewStamper(mock)
	if got := st.Micros(); got != 0 {
		t.Fatalf("micros=%d want 0", got)
	}
	mock.Add(1500 * time.Microsecond)
	if got := st.Micros(); got != 1500 {
		t.Fatalf("micros=%d want 1500", got)
	}
}

func TestMicrosOf_Wraps(t *testing.T) {
	// 2^32 us is ~71.6 minutes.
	d := time.Duration(1<<32)*time.Microsecond + 7*time.Microsecond
	if got := MicrosOf(d); got != 7 {
		t.Fatalf("micros=%d want 7", got)
	}
	if got := MicrosOf(-time.Second); got != 0 {
		t.Fatalf("micros=%d want 0 for negative", got)
	}
}

func TestSend_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan Sample)
	if err := Send(ctx, out, Sample{}); err == nil {
		t.Fatalf("expected ctx error")
	}
}
