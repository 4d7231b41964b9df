package agent

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownAgent = errors.New("unknown agent index")
	ErrDuplicateID  = errors.New("agent id already registered")
	ErrDependency   = errors.New("invalid dependency")
)

// Registry owns a set of agents and the dependency edges between them.
// Edges are index references, so agents never point at each other directly.
// The registry records the graph only; nothing here runs agents in
// dependency order.
type Registry struct {
	mu     sync.RWMutex
	agents []*Agent
	byID   map[string]int
	deps   [][]int
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Add registers a and returns its index.
func (r *Registry) Add(a *Agent) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.id]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateID, a.id)
	}
	r.agents = append(r.agents, a)
	r.deps = append(r.deps, nil)
	idx := len(r.agents) - 1
	r.byID[a.id] = idx
	return idx, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// Get returns the agent at index i.
func (r *Registry) Get(i int) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.agents) {
		return nil, false
	}
	return r.agents[i], true
}

// Lookup returns the index of the agent with the given id.
func (r *Registry) Lookup(id string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	return i, ok
}

// AddDependency records that agent from depends on agent to. Self edges and
// edges that would close a cycle are rejected.
func (r *Registry) AddDependency(from, to int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.agents)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d", ErrUnknownAgent, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: agent %d cannot depend on itself", ErrDependency, from)
	}
	if slices.Contains(r.deps[from], to) {
		return nil
	}
	if r.reachable(to, from) {
		return fmt.Errorf("%w: %d -> %d would create a cycle", ErrDependency, from, to)
	}
	r.deps[from] = append(r.deps[from], to)
	return nil
}

// Dependencies returns the indices agent i depends on, in insertion order.
func (r *Registry) Dependencies(i int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.deps) {
		return nil
	}
	return slices.Clone(r.deps[i])
}

// reachable reports whether target can be reached from start. Callers hold mu.
func (r *Registry) reachable(start, target int) bool {
	seen := make([]bool, len(r.agents))
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, r.deps[cur]...)
	}
	return false
}
