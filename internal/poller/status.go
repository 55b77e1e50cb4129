package poller

import "time"

// State is a poller lifecycle stage.
type State int

const (
	StateStarting State = iota
	StatePolling
	StateDraining
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StatePolling:
		return "polling"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the poller has exited.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// Status describes a poller's progress and recent health.
type Status struct {
	State               State
	Cursor              int
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Outcome             string
}

func (p *Poller) setState(s State) {
	p.statusMu.Lock()
	p.status.State = s
	p.statusMu.Unlock()
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time, cursor int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.Cursor = cursor
}

func (p *Poller) recordFailure(err error) int {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	return p.status.ConsecutiveFailures
}

func (p *Poller) finish(state State, outcome string) {
	p.statusMu.Lock()
	p.status.State = state
	p.status.Outcome = outcome
	p.statusMu.Unlock()
}

// Status returns a snapshot of the poller's state.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
