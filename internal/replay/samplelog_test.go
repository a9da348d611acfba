package replay

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"

	"ipt-nav/internal/orientation"
)

type fakeSleeper struct {
	slept []time.Duration
}

func (fs *fakeSleeper) Sleep(d time.Duration) {
	fs.slept = append(fs.slept, d)
}

func TestReaderReadAll(t *testing.T) {
	in := strings.NewReader(`
# comment

START
0, 0.5, 0.1, 0
10, -1.25,0.2, 3e-3
`)

	recs, err := NewReader(in).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	want := []Record{
		{Start: true},
		{At: 0, Yaw: 0.5, Pitch: 0.1},
		{At: 10 * time.Nanosecond, Yaw: -1.25, Pitch: 0.2, Roll: 0.003},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
}

func TestReaderReadAll_InvalidLines(t *testing.T) {
	for name, in := range map[string]string{
		"NoCommas":      "not-a-valid-line\n",
		"TooFewFields":  "10,0.1,0.2\n",
		"EmptyField":    "10,,0.2,0\n",
		"BadTimestamp":  "ten,0,0,0\n",
		"NegativeTime":  "-5,0,0,0\n",
		"BadAngle":      "5,north,0,0\n",
		"TooManyFields": "5,0,0,0,0\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewReader(strings.NewReader(in)).ReadAll(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRecordReplay_RoundTripSamplesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.log")
	start := time.Unix(1000, 0)

	w, err := CreateWriter(path, start)
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}
	in := []orientation.Sample{
		{Yaw: 0.1, Pitch: 0.35},
		{Yaw: math.Pi, Pitch: -0.2, Roll: 0.01},
		{Yaw: 6.2, Pitch: 1.0 / 3},
	}
	for i, s := range in {
		if err := w.WriteSample(start.Add(time.Duration(i)*20*time.Millisecond), s); err != nil {
			_ = w.Close()
			t.Fatalf("WriteSample() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.WriteSample(start, in[0]); err == nil {
		t.Fatalf("expected error writing after Close")
	}

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	var out []orientation.Sample
	var offsets []time.Duration
	fs := &fakeSleeper{}
	err = Play(recs, 1.0, false, fs, func(at time.Duration, r Record) error {
		offsets = append(offsets, at)
		out = append(out, r.Sample(0))
		return nil
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("samples (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{0, 20 * time.Millisecond, 40 * time.Millisecond}, offsets); diff != "" {
		t.Fatalf("offsets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{20 * time.Millisecond, 20 * time.Millisecond}, fs.slept); diff != "" {
		t.Fatalf("sleeps (-want +got):\n%s", diff)
	}
}

func TestPlay_SpeedScalesWaitsNotOffsets(t *testing.T) {
	recs := []Record{{Start: true}, {At: 0}, {At: 100 * time.Millisecond}}
	fs := &fakeSleeper{}
	var offsets []time.Duration
	err := Play(recs, 4, false, fs, func(at time.Duration, _ Record) error {
		offsets = append(offsets, at)
		return nil
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if len(fs.slept) != 1 || fs.slept[0] != 25*time.Millisecond {
		t.Fatalf("slept=%v want [25ms]", fs.slept)
	}
	if offsets[1] != 100*time.Millisecond {
		t.Fatalf("offset=%s want 100ms", offsets[1])
	}
}

func TestPlay_StartMarkersAndLoopKeepOffsetsIncreasing(t *testing.T) {
	recs := []Record{
		{Start: true}, {At: 0}, {At: 10 * time.Millisecond},
		{Start: true}, {At: 5 * time.Millisecond},
	}
	var offsets []time.Duration
	passes := 0
	err := Play(recs, 1, true, &fakeSleeper{}, func(at time.Duration, _ Record) error {
		offsets = append(offsets, at)
		if len(offsets) == 6 {
			passes = 2
			return context.Canceled
		}
		return nil
	})
	if err != context.Canceled || passes != 2 {
		t.Fatalf("err=%v passes=%d", err, passes)
	}
	want := []time.Duration{0, 10, 15, 15, 25, 30}
	for i := range want {
		want[i] *= time.Millisecond
	}
	if diff := cmp.Diff(want, offsets); diff != "" {
		t.Fatalf("offsets (-want +got):\n%s", diff)
	}
}

func TestPlay_Errors(t *testing.T) {
	cb := func(time.Duration, Record) error { return nil }
	if err := Play([]Record{{At: 0}}, 0, false, nil, cb); err == nil {
		t.Fatalf("expected speed error")
	}
	if err := Play([]Record{{At: 0}}, 1, false, nil, nil); err == nil {
		t.Fatalf("expected callback error")
	}
	if err := Play([]Record{{Start: true}}, 1, false, nil, cb); err == nil {
		t.Fatalf("expected no records error")
	}
}

func TestSource_StampsRecordedOffsets(t *testing.T) {
	recs := []Record{{Start: true}, {At: 0, Yaw: 1}, {At: 50 * time.Millisecond, Yaw: 2}, {At: 70 * time.Millisecond, Yaw: 3}}
	mock := clock.NewMock()
	src := NewSource(recs, 2, false, mock, nil)

	out := make(chan orientation.Sample, 8)
	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background(), out) }()

	finished := false
	var runErr error
	for i := 0; i < 200 && !finished; i++ {
		mock.Add(5 * time.Millisecond)
		select {
		case runErr = <-done:
			finished = true
		case <-time.After(2 * time.Millisecond):
		}
	}
	if !finished {
		t.Fatalf("Run did not finish")
	}
	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	close(out)
	var got []orientation.Sample
	for s := range out {
		got = append(got, s)
	}
	want := []orientation.Sample{
		{Yaw: 1, Micros: 0},
		{Yaw: 2, Micros: 50_000},
		{Yaw: 3, Micros: 70_000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("samples (-want +got):\n%s", diff)
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	recs := []Record{{At: 0}, {At: time.Hour}}
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan orientation.Sample, 1)
	done := make(chan error, 1)
	go func() { done <- NewSource(recs, 1, true, clock.NewMock(), nil).Run(ctx, out) }()
	<-out
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop")
	}
}
