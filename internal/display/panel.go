package display

import (
	"go.uber.org/zap"
)

// Panel shows frames and a proportion bar. Show is called from the control
// loop only.
type Panel interface {
	Show(f Frame, percent float64) error
}

// LogPanel writes frames to the log when they change.
type LogPanel struct {
	log  *zap.SugaredLogger
	last Frame
	have bool
}

func NewLogPanel(log *zap.SugaredLogger) *LogPanel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LogPanel{log: log}
}

func (p *LogPanel) Show(f Frame, percent float64) error {
	if p.have && f == p.last {
		return nil
	}
	p.last, p.have = f, true
	p.log.Infow("display: "+f.Guidance, "title", f.Title, "status", f.Status, "proximity", percent)
	return nil
}

// Nop discards frames.
type Nop struct{}

func (Nop) Show(Frame, float64) error { return nil }
