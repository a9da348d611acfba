package buttons

import (
	"fmt"
	"sync"
)

// Kind is what the user asked for.
type Kind int

const (
	SetWaypoint Kind = iota
	CycleForward
	CycleBackward
	JumpTo
	NextUnit
	PrevUnit
	Recalibrate
	Level
)

func (k Kind) String() string {
	switch k {
	case SetWaypoint:
		return "set-waypoint"
	case CycleForward:
		return "cycle-forward"
	case CycleBackward:
		return "cycle-backward"
	case JumpTo:
		return "jump-to"
	case NextUnit:
		return "next-unit"
	case PrevUnit:
		return "prev-unit"
	case Recalibrate:
		return "recalibrate"
	case Level:
		return "level"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one action. Index is used by JumpTo only.
type Event struct {
	Kind  Kind
	Index int
}

// Actions maps newly pressed buttons to events in a fixed order.
// Enter stores the waypoint, Up and Down walk the waypoint list and
// Left and Right walk the display units.
func Actions(pressed Button) []Event {
	var out []Event
	if pressed&Up != 0 {
		out = append(out, Event{Kind: CycleBackward})
	}
	if pressed&Down != 0 {
		out = append(out, Event{Kind: CycleForward})
	}
	if pressed&Enter != 0 {
		out = append(out, Event{Kind: SetWaypoint})
	}
	if pressed&Left != 0 {
		out = append(out, Event{Kind: PrevUnit})
	}
	if pressed&Right != 0 {
		out = append(out, Event{Kind: NextUnit})
	}
	return out
}

// Source yields the events that happened since the previous call.
type Source interface {
	Poll() []Event
}

// Queue is a Source fed by pushes from another goroutine, such as a keyboard.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

func (q *Queue) Push(ev ...Event) {
	q.mu.Lock()
	q.events = append(q.events, ev...)
	q.mu.Unlock()
}

func (q *Queue) Poll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Multi polls several sources in order.
type Multi []Source

func (m Multi) Poll() []Event {
	var out []Event
	for _, s := range m {
		if s == nil {
			continue
		}
		out = append(out, s.Poll()...)
	}
	return out
}
