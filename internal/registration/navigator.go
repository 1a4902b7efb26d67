package registration

import "sync"

// Signal is a navigation request emitted by a wizard.
type Signal string

const (
	SignalNone  Signal = ""
	SignalLogin Signal = "login"
	SignalBack  Signal = "back"
)

// SignalRecorder is a Navigator that remembers what was requested, for callers
// that report navigation to a remote screen instead of performing it.
type SignalRecorder struct {
	mu      sync.Mutex
	last    Signal
	pending Signal
	counts  map[Signal]int
}

// NewSignalRecorder creates an empty recorder.
func NewSignalRecorder() *SignalRecorder {
	return &SignalRecorder{counts: map[Signal]int{}}
}

func (r *SignalRecorder) ToLogin() { r.record(SignalLogin) }
func (r *SignalRecorder) Back()    { r.record(SignalBack) }

// Last returns the most recent signal.
func (r *SignalRecorder) Last() Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Take returns the most recent signal not yet taken and clears it.
func (r *SignalRecorder) Take() Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.pending
	r.pending = SignalNone
	return s
}

// Count returns how many times s fired.
func (r *SignalRecorder) Count(s Signal) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[s]
}

func (r *SignalRecorder) record(s Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = s
	r.pending = s
	r.counts[s]++
}

var _ Navigator = (*SignalRecorder)(nil)
