package types

// CounterState tags the Counter union.
type CounterState uint8

const (
	CounterNormal CounterState = iota
	CounterDeprioritized
)

// String returns the string representation of the state
func (s CounterState) String() string {
	switch s {
	case CounterNormal:
		return "normal"
	case CounterDeprioritized:
		return "deprioritized"
	default:
		return "unknown"
	}
}

// DeprioritizedRank sorts below every real count or score.
const DeprioritizedRank = -1.0

// Counter holds the usage statistics of one item. The zero value is a
// normal counter for an item that was never launched.
type Counter struct {
	State     CounterState `json:"state"`
	ShortTerm uint         `json:"short_term"`
	LongTerm  uint         `json:"long_term"`
	Combined  float64      `json:"combined"`
}

// NormalCounter builds a counter in the normal state.
func NormalCounter(shortTerm, longTerm uint, combined float64) Counter {
	return Counter{
		State:     CounterNormal,
		ShortTerm: shortTerm,
		LongTerm:  longTerm,
		Combined:  combined,
	}
}

// DeprioritizedCounter builds the deprioritized sentinel. It carries no counts.
func DeprioritizedCounter() Counter {
	return Counter{State: CounterDeprioritized}
}

// IsDeprioritized reports whether the counter is the deprioritized sentinel.
func (c Counter) IsDeprioritized() bool {
	return c.State == CounterDeprioritized
}

// LongTermRank is the sort key of the most-used head list.
func (c Counter) LongTermRank() float64 {
	if c.IsDeprioritized() {
		return DeprioritizedRank
	}
	return float64(c.LongTerm)
}

// CombinedRank is the sort key of the tail list.
func (c Counter) CombinedRank() float64 {
	if c.IsDeprioritized() {
		return DeprioritizedRank
	}
	return c.Combined
}
