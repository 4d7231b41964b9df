// Package agent implements the actors that request completions and exchange
// messages with each other.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"bootstrap/logging"
	"bootstrap/message"
)

// TimestampFormat is the ISO-8601 layout used for log entries.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Responder produces a reply for a prompt. *controller.Controller
// implements it.
type Responder interface {
	GenerateResponse(ctx context.Context, req message.PromptRequest) (message.Message, error)
}

// LogEntry is one line of an agent's history.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp, e.Text)
}

// Agent is an actor with a fixed identity and an append-only log.
type Agent struct {
	id        string
	responder Responder
	logger    *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	entries  []LogEntry
	state    State
	inflight int
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the shared diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// WithClock overrides the time source used for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates an idle agent that sends prompts through r.
func New(id string, r Responder, opts ...Option) *Agent {
	a := &Agent{
		id:        id,
		responder: r,
		logger:    log.Default(),
		now:       time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) ID() string {
	return a.id
}

// SendPrompt records the outgoing request and forwards it to the responder.
// Failures are returned as the responder produced them.
func (a *Agent) SendPrompt(ctx context.Context, req message.PromptRequest) (message.Message, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", req))
	}
	a.log("Sending prompt: " + string(payload))

	a.begin()
	defer a.end()

	return a.responder.GenerateResponse(logging.WithAgent(ctx, a.id), req)
}

// SendMessage logs the message and delivers it to peer synchronously.
func (a *Agent) SendMessage(peer *Agent, text string) {
	a.log(fmt.Sprintf("Communicating with %s: %s", peer.id, text))
	peer.ReceiveMessage(a, text)
}

// ReceiveMessage records a message from sender. No reply is produced.
func (a *Agent) ReceiveMessage(sender *Agent, text string) {
	a.log(fmt.Sprintf("Received message from %s: %s", sender.id, text))
}

// Log returns a copy of the agent's entries in the order they were written.
func (a *Agent) Log() []LogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]LogEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *Agent) log(action string) {
	entry := LogEntry{
		Timestamp: a.now().UTC().Format(TimestampFormat),
		Text:      action,
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	a.logger.Info(entry.String(), "agent_id", a.id)
}
