package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"ipt-nav/internal/orientation"
)

// Log format: line-oriented text.
//
// - Blank lines ignored.
// - Lines starting with '#' ignored.
// - Line "START" resets the origin (next record time is relative to 0 again).
// - Data lines are: <t_ns>,<yaw>,<pitch>,<roll>
//   where t_ns is nanoseconds since START and the angles are radians.

type Record struct {
	At    time.Duration
	Start bool
	Yaw   float64
	Pitch float64
	Roll  float64
}

// Sample returns the record's angles stamped with micros.
func (r Record) Sample(micros uint32) orientation.Sample {
	return orientation.Sample{Yaw: r.Yaw, Pitch: r.Pitch, Roll: r.Roll, Micros: micros}
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFile opens path and reads every record from it.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewReader(f).ReadAll()
}

func (rr *Reader) ReadAll() ([]Record, error) {
	s := bufio.NewScanner(rr.r)

	recs := make([]Record, 0, 1024)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "START" {
			recs = append(recs, Record{Start: true})
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("invalid replay line %d (want 4 fields): %q", lineNo, line)
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
			if fields[i] == "" {
				return nil, fmt.Errorf("invalid replay line %d (empty field): %q", lineNo, line)
			}
		}

		tsNs, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid replay timestamp %q: %w", fields[0], err)
		}
		if tsNs < 0 {
			return nil, fmt.Errorf("invalid replay timestamp (negative): %d", tsNs)
		}
		var ang [3]float64
		for i := range ang {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid replay angle %q on line %d: %w", fields[i+1], lineNo, err)
			}
			ang[i] = v
		}
		recs = append(recs, Record{At: time.Duration(tsNs), Yaw: ang[0], Pitch: ang[1], Roll: ang[2]})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Writer appends samples to a log. It is not safe for concurrent use.
type Writer struct {
	c      io.Closer
	w      *bufio.Writer
	start  time.Time
	closed bool
}

// CreateWriter truncates path and writes a START marker. Sample times are
// measured from start.
func CreateWriter(path string, start time.Time) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, start)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// NewWriter writes to wc, which Close closes.
func NewWriter(wc io.WriteCloser, start time.Time) (*Writer, error) {
	bw := bufio.NewWriterSize(wc, 64*1024)
	if _, err := bw.WriteString("START\n"); err != nil {
		return nil, err
	}
	return &Writer{c: wc, w: bw, start: start}, nil
}

func (ww *Writer) WriteSample(now time.Time, s orientation.Sample) error {
	if ww.closed {
		return errors.New("replay writer is closed")
	}
	d := now.Sub(ww.start)
	if d < 0 {
		d = 0
	}
	_, err := fmt.Fprintf(ww.w, "%d,%s,%s,%s\n", d.Nanoseconds(), ftoa(s.Yaw), ftoa(s.Pitch), ftoa(s.Roll))
	return err
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	if err := ww.w.Flush(); err != nil {
		_ = ww.c.Close()
		return err
	}
	return ww.c.Close()
}

type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Play replays records with their relative timing.
//
// cb is invoked for each data record with its playback offset: recorded time
// accumulated across START markers and loop passes, never scaled by speed.
//
// speed: 1.0 = real time, 2.0 = 2x speed (half waits), 0.5 = half speed.
func Play(records []Record, speed float64, loop bool, sleeper Sleeper, cb func(at time.Duration, r Record) error) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("callback is nil")
	}
	n := 0
	for _, r := range records {
		if !r.Start {
			n++
		}
	}
	if n == 0 {
		return errors.New("no records")
	}

	var base time.Duration
	for {
		var lastAt time.Duration
		var haveLast bool

		for _, r := range records {
			if r.Start {
				base += lastAt
				lastAt = 0
				haveLast = false
				continue
			}

			at := r.At
			if haveLast {
				wait := at - lastAt
				if wait < 0 {
					wait = 0
					at = lastAt
				}
				wait = time.Duration(float64(wait) / speed)
				if wait > 0 {
					sleeper.Sleep(wait)
				}
			}

			if err := cb(base+at, r); err != nil {
				return err
			}

			lastAt = at
			haveLast = true
		}

		if !loop {
			return nil
		}
		base += lastAt
	}
}
