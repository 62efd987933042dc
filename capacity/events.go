package capacity

import "fmt"

// EventType tags a depletion-log entry. Grounded on chanfitness's
// peerOnlineEvent/peerOfflineEvent pair, repurposed here for
// edge-depleted/edge-available transitions instead of peer connectivity
// (spec.md §4.9).
type EventType int

const (
	// EventDepleted marks the tick at which forward_update removed a
	// directed edge from the SearchGraph because live_cap fell below
	// 2*amount.
	EventDepleted EventType = iota

	// EventAvailable marks the tick at which backward_update re-inserted
	// a previously depleted directed edge.
	EventAvailable
)

// String provides string representations of depletion events, mirroring
// chanfitness.eventType.String().
func (e EventType) String() string {
	switch e {
	case EventDepleted:
		return "depleted"
	case EventAvailable:
		return "available"
	default:
		return "unknown"
	}
}

type depletionEvent struct {
	tick int
	typ  EventType
}

// edgeLog stores all depletion/availability transitions for a single
// directed edge, mirroring chanfitness's chanEventLog.
type edgeLog struct {
	events []depletionEvent
}

// add appends a transition at the current tick, skipping a repeated
// transition of the same type (an edge doesn't need two consecutive
// "depleted" events if backward_update never intervened with an available
// one in between, which cannot happen given process_path's control flow,
// but the guard keeps the log well-formed if future callers change that).
func (e *edgeLog) add(tick int, typ EventType) {
	if n := len(e.events); n > 0 && e.events[n-1].typ == typ {
		return
	}
	e.events = append(e.events, depletionEvent{tick: tick, typ: typ})
}

// TickRange is an inclusive-exclusive [Start, End) span of simulation ticks.
type TickRange struct {
	Start, End int
}

// EventLog is the run-scoped depletion event log: the structured
// replacement for the original implementation's bare total_depletions
// node->count dict (spec.md §4.9), keyed per directed edge rather than per
// node so the per-node depletion counts spec.md §4.4 requires are a
// projection of it, not a replacement for it.
type EventLog struct {
	tick int
	logs map[EdgeKey]*edgeLog
}

// NewEventLog returns an empty depletion event log at tick 0.
func NewEventLog() *EventLog {
	return &EventLog{logs: make(map[EdgeKey]*edgeLog)}
}

// Advance moves the log's clock forward by one tick; the Path Engine calls
// this once per processed transaction so depletion events can be ordered
// and later turned into depleted-fraction statistics.
func (l *EventLog) Advance() {
	l.tick++
}

// Record appends a depletion/availability transition for key at the
// current tick.
func (l *EventLog) Record(key EdgeKey, typ EventType) {
	el, ok := l.logs[key]
	if !ok {
		el = &edgeLog{}
		l.logs[key] = el
	}
	el.add(l.tick, typ)
}

// DepletionCounts returns, for every node n, the number of times a directed
// edge terminating at n was depleted over the run — exactly
// total_depletions from spec.md §4.4/§4.6.
func (l *EventLog) DepletionCounts() map[string]int {
	counts := make(map[string]int)
	for key, el := range l.logs {
		for _, ev := range el.events {
			if ev.typ == EventDepleted {
				counts[key.Trg]++
			}
		}
	}
	return counts
}

// DepletedPeriods returns the tick ranges during which the given directed
// edge was depleted (absent from the SearchGraph), mirroring
// chanEventLog.getOnlinePeriods but for the inverse condition.
func (l *EventLog) DepletedPeriods(key EdgeKey) []TickRange {
	el, ok := l.logs[key]
	if !ok || len(el.events) == 0 {
		return nil
	}

	var (
		periods []TickRange
		open    *depletionEvent
	)
	for i := range el.events {
		ev := el.events[i]
		switch ev.typ {
		case EventDepleted:
			if open == nil {
				open = &el.events[i]
			}
		case EventAvailable:
			if open != nil {
				periods = append(periods, TickRange{Start: open.tick, End: ev.tick})
				open = nil
			}
		}
	}
	if open != nil {
		periods = append(periods, TickRange{Start: open.tick, End: l.tick})
	}

	return periods
}

// DepletedFraction reports the fraction of the simulation run (by tick
// count) that the given directed edge spent depleted, the non-breaking
// enrichment described in spec.md §4.9.
func (l *EventLog) DepletedFraction(key EdgeKey) float64 {
	if l.tick == 0 {
		return 0
	}

	var depleted int
	for _, p := range l.DepletedPeriods(key) {
		depleted += p.End - p.Start
	}

	return float64(depleted) / float64(l.tick)
}

// String implements fmt.Stringer for debugging convenience.
func (l *EventLog) String() string {
	return fmt.Sprintf("EventLog{tick=%d, edges=%d}", l.tick, len(l.logs))
}
