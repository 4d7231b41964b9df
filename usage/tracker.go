// Package usage estimates prompt sizes and accumulates token usage and cost
// per agent.
package usage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// FileName is the default name used when saving a tracker.
const FileName = "token_usage.json"

var modelPricing = map[string]struct {
	InputCostPer1K  float64
	OutputCostPer1K float64
}{
	"gpt-4o":        {0.0025, 0.01},
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4-turbo":   {0.01, 0.03},
	"gpt-4":         {0.03, 0.06},
	"gpt-3.5-turbo": {0.0015, 0.002},
}

// Cost returns the expected USD cost of a call. Unknown models are priced as
// gpt-4o-mini.
func Cost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		pricing = modelPricing["gpt-4o-mini"]
	}
	return float64(inputTokens)/1000.0*pricing.InputCostPer1K +
		float64(outputTokens)/1000.0*pricing.OutputCostPer1K
}

// Totals is a running token and cost sum.
type Totals struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost_usd"`
}

func (t *Totals) add(model string, in, out int) {
	t.InputTokens += in
	t.OutputTokens += out
	t.TotalTokens += in + out
	t.Cost += Cost(model, in, out)
}

// AgentUsage is the usage attributed to one agent.
type AgentUsage struct {
	AgentID     string    `json:"agent_id"`
	Usage       Totals    `json:"usage"`
	CallCount   int       `json:"call_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// Writer persists content at a path. sink.Writer satisfies it.
type Writer interface {
	Write(content, path string) error
}

// Tracker records usage across agents. It is safe for concurrent use.
type Tracker struct {
	mu           sync.RWMutex
	total        Totals
	agents       map[string]*AgentUsage
	sessionStart time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		agents:       make(map[string]*AgentUsage),
		sessionStart: time.Now(),
	}
}

// Record adds one completed call. An empty agentID is recorded as "unknown".
func (t *Tracker) Record(agentID, model string, inputTokens, outputTokens int) {
	if agentID == "" {
		agentID = "unknown"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.agents[agentID]
	if !ok {
		a = &AgentUsage{AgentID: agentID}
		t.agents[agentID] = a
	}
	a.Usage.add(model, inputTokens, outputTokens)
	a.CallCount++
	a.LastUpdated = time.Now()

	t.total.add(model, inputTokens, outputTokens)
}

// Total returns the usage summed over all agents.
func (t *Tracker) Total() Totals {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Agent returns a copy of the usage recorded for id.
func (t *Tracker) Agent(id string) (AgentUsage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.agents[id]
	if !ok {
		return AgentUsage{}, false
	}
	return *a, true
}

type snapshot struct {
	TotalUsage   Totals                `json:"total_usage"`
	AgentUsage   map[string]AgentUsage `json:"agent_usage"`
	SessionStart time.Time             `json:"session_start"`
}

func (t *Tracker) MarshalJSON() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := snapshot{
		TotalUsage:   t.total,
		AgentUsage:   make(map[string]AgentUsage, len(t.agents)),
		SessionStart: t.sessionStart,
	}
	for id, a := range t.agents {
		s.AgentUsage[id] = *a
	}
	return json.Marshal(s)
}

// Save writes the tracker as indented JSON to path through w.
func (t *Tracker) Save(w Writer, path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}
	return w.Write(string(data), path)
}
