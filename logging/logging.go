// Package logging builds the process logger and carries per-request fields
// through a context.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type ctxKey string

const (
	agentIDKey   ctxKey = "agent_id"
	requestIDKey ctxKey = "request_id"
)

// New returns a logger writing to w. DEBUG=true in the environment lowers the
// level to debug.
func New(w io.Writer) *log.Logger {
	level := log.InfoLevel
	if os.Getenv("DEBUG") == "true" {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// WithAgent tags ctx with the id of the agent issuing a call.
func WithAgent(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, agentIDKey, id)
}

// WithRequestID tags ctx with a request correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// AgentID returns the agent id stored in ctx, or "".
func AgentID(ctx context.Context) string {
	id, _ := ctx.Value(agentIDKey).(string)
	return id
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns base extended with the fields found in ctx.
func FromContext(ctx context.Context, base *log.Logger) *log.Logger {
	if base == nil {
		base = log.Default()
	}
	var fields []interface{}
	if id := AgentID(ctx); id != "" {
		fields = append(fields, "agent_id", id)
	}
	if id := RequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
