package agent

// State describes what an agent is doing. Only prompt sending changes it
// automatically; blocking is left to the caller.
type State int

const (
	StateIdle State = iota
	StateWorking
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWorking:
		return "working"
	case StateBlocked:
		return "blocked"
	}
	return "unknown"
}

// State returns the current state. An agent with a prompt outstanding is
// working; otherwise it is idle or blocked.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inflight > 0 {
		return StateWorking
	}
	return a.state
}

// Block marks the agent as waiting on something outside its control. The
// mark takes effect once outstanding prompts have returned.
func (a *Agent) Block() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateBlocked
}

// Unblock returns a blocked agent to idle.
func (a *Agent) Unblock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateBlocked {
		a.state = StateIdle
	}
}

func (a *Agent) begin() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight++
}

func (a *Agent) end() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
}
