package display

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"ipt-nav/internal/buttons"
	"ipt-nav/internal/leds"
)

// LCD geometry of the character display being imitated.
const (
	LCDCols = 20
	LCDRows = 4
)

// Terminal draws a character LCD and an LED bar in a terminal window and
// turns key presses into button events.
type Terminal struct {
	screen tcell.Screen
	log    *zap.SugaredLogger
	nLEDs  int
	pwm    bool

	keys buttons.Queue

	mu       sync.Mutex
	closed   bool
	quit     chan struct{}
	quitOnce sync.Once
	finiOnce sync.Once
}

// NewTerminal takes ownership of screen, initializing it. A nil screen
// opens the controlling terminal.
func NewTerminal(screen tcell.Screen, nLEDs int, pwm bool, log *zap.SugaredLogger) (*Terminal, error) {
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("display: open terminal: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("display: init terminal: %w", err)
	}
	if nLEDs <= 0 {
		nLEDs = 8
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	screen.HideCursor()
	screen.Clear()
	return &Terminal{screen: screen, log: log, nLEDs: nLEDs, pwm: pwm, quit: make(chan struct{})}, nil
}

// Events returns key presses as button events.
func (t *Terminal) Events() buttons.Source { return &t.keys }

// Done is closed when the user asks to quit.
func (t *Terminal) Done() <-chan struct{} { return t.quit }

var (
	styleFrame = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLCD   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleLEDs  = []tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorDarkGray),
		tcell.StyleDefault.Foreground(tcell.ColorDarkGreen),
		tcell.StyleDefault.Foreground(tcell.ColorGreen),
		tcell.StyleDefault.Foreground(tcell.ColorLime),
	}
)

func (t *Terminal) Show(f Frame, percent float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}

	s := t.screen
	s.Clear()
	// Box around the LCD at (0,0).
	for x := 1; x <= LCDCols; x++ {
		s.SetContent(x, 0, '-', nil, styleFrame)
		s.SetContent(x, LCDRows+1, '-', nil, styleFrame)
	}
	for y := 1; y <= LCDRows; y++ {
		s.SetContent(0, y, '|', nil, styleFrame)
		s.SetContent(LCDCols+1, y, '|', nil, styleFrame)
	}
	rows := [LCDRows]string{f.Title, f.Status, "", f.Guidance}
	for y, line := range rows {
		drawRow(s, 1, y+1, LCDCols, line, styleLCD)
	}

	// LED bar below the LCD.
	if lv, ok := leds.Levels(percent, t.nLEDs, t.pwm); ok {
		for i, v := range lv {
			st := styleLEDs[int(v)/leds.PWMStep]
			r := 'o'
			if v > 0 {
				r = '*'
			}
			s.SetContent(1+2*i, LCDRows+3, r, nil, st)
		}
	}
	const help = "enter:set  up/down:waypoint  left/right:unit  c:recal  z:level  q:quit"
	drawRow(s, 0, LCDRows+5, len(help), help, styleFrame)
	s.Show()
	return nil
}

// drawRow writes text padded or clipped to width cells.
func drawRow(s tcell.Screen, x0, y, width int, text string, st tcell.Style) {
	runes := []rune(text)
	for i := 0; i < width; i++ {
		r := ' '
		if i < len(runes) {
			r = runes[i]
		}
		s.SetContent(x0+i, y, r, nil, st)
	}
}

// Run reads terminal events until ctx is done, Close is called or the user
// quits.
func (t *Terminal) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-stop:
		}
	}()
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventResize:
			t.mu.Lock()
			if !t.closed {
				t.screen.Sync()
			}
			t.mu.Unlock()
		case *tcell.EventKey:
			if t.handleKey(e.Key(), e.Rune()) {
				return nil
			}
		}
	}
}

// handleKey queues the event for a key and reports whether it was a quit.
func (t *Terminal) handleKey(key tcell.Key, r rune) bool {
	bev, quit, ok := KeyAction(key, r)
	if quit {
		t.log.Infof("display: quit requested")
		t.quitOnce.Do(func() { close(t.quit) })
		return true
	}
	if ok {
		t.keys.Push(bev)
	}
	return false
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.finiOnce.Do(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.closed = true
		t.screen.Fini()
	})
	return nil
}
