package lifecycle

import "sync/atomic"

// Phase is the stage of a sampling run.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseCollecting
	PhaseAggregating
	PhaseDone
	PhaseInterrupted
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseCollecting:
		return "collecting"
	case PhaseAggregating:
		return "aggregating"
	case PhaseDone:
		return "done"
	case PhaseInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Progress is a point-in-time view of the run, read by the status server.
type Progress struct {
	Phase     Phase
	Collected int
	Target    int
	Attempts  int
}

var (
	shuttingDown atomic.Bool
	phase        atomic.Int32
	collected    atomic.Int64
	target       atomic.Int64
	attempts     atomic.Int64
)

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT received.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown returns true once a termination signal has been received.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// SetPhase records the current run phase.
func SetPhase(p Phase) {
	phase.Store(int32(p))
}

// CurrentPhase returns the current run phase.
func CurrentPhase() Phase {
	return Phase(phase.Load())
}

// StartCollecting resets progress counters for a run targeting n records.
func StartCollecting(n int) {
	target.Store(int64(n))
	collected.Store(0)
	attempts.Store(0)
	SetPhase(PhaseCollecting)
}

// RecordAttempt counts one collector attempt and stores the sample size after it.
func RecordAttempt(sampleSize int) {
	attempts.Add(1)
	collected.Store(int64(sampleSize))
}

// Snapshot returns the current progress.
func Snapshot() Progress {
	return Progress{
		Phase:     CurrentPhase(),
		Collected: int(collected.Load()),
		Target:    int(target.Load()),
		Attempts:  int(attempts.Load()),
	}
}

// Reset clears all recorded state. For tests only.
func Reset() {
	shuttingDown.Store(false)
	phase.Store(int32(PhaseStarting))
	collected.Store(0)
	target.Store(0)
	attempts.Store(0)
}
