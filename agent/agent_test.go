package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap/failure"
	"bootstrap/logging"
	"bootstrap/message"
)

type mockResponder struct {
	reply   message.Message
	err     error
	calls   int
	agentID string
	during  func()
}

func (m *mockResponder) GenerateResponse(ctx context.Context, req message.PromptRequest) (message.Message, error) {
	m.calls++
	m.agentID = logging.AgentID(ctx)
	if m.during != nil {
		m.during()
	}
	return m.reply, m.err
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 11, 5, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newTestAgent(id string, r Responder) *Agent {
	return New(id, r, WithLogger(logging.Discard()), WithClock(fixedClock()))
}

func TestSendPromptLogsBeforeCall(t *testing.T) {
	var a *Agent
	var logLenDuringCall int
	mock := &mockResponder{reply: message.Assistant("line1\nline2\nline3")}
	mock.during = func() { logLenDuringCall = len(a.Log()) }
	a = newTestAgent("0", mock)

	req := message.PromptRequest{
		message.Developer("You are a poet."),
		message.User("Write a haiku"),
	}
	got, err := a.SendPrompt(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "line1\nline2\nline3", got.Content)
	assert.Equal(t, 1, logLenDuringCall)
	assert.Equal(t, "0", mock.agentID)

	entries := a.Log()
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Text, "Sending prompt: "))
	assert.Contains(t, entries[0].Text, `"content":"Write a haiku"`)
	assert.Equal(t, "2024-11-05T10:30:00.000Z", entries[0].Timestamp)
}

func TestSendPromptPropagatesFailure(t *testing.T) {
	sf := failure.NewServiceFailure(failure.KindStatus, failure.MsgGenerateResponse, errors.New("500"))
	a := newTestAgent("0", &mockResponder{err: sf})

	_, err := a.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
	assert.Same(t, sf, err)
	assert.Len(t, a.Log(), 1)
	assert.Equal(t, StateIdle, a.State())
}

func TestSendPromptEmptyContentIsNotAnError(t *testing.T) {
	a := newTestAgent("0", &mockResponder{reply: message.Assistant("")})

	got, err := a.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestStateWhileWorking(t *testing.T) {
	var a *Agent
	var during State
	mock := &mockResponder{during: func() { during = a.State() }}
	a = newTestAgent("0", mock)

	_, _ = a.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
	assert.Equal(t, StateWorking, during)
	assert.Equal(t, StateIdle, a.State())

	a.Block()
	assert.Equal(t, StateBlocked, a.State())
	a.Unblock()
	assert.Equal(t, StateIdle, a.State())
}

// gatedResponder holds each call until its gate is closed.
type gatedResponder struct {
	started chan struct{}
	gates   chan chan struct{}
}

func (g *gatedResponder) GenerateResponse(ctx context.Context, req message.PromptRequest) (message.Message, error) {
	gate := <-g.gates
	g.started <- struct{}{}
	<-gate
	return message.Assistant("ok"), nil
}

func TestStateWithOverlappingPrompts(t *testing.T) {
	g := &gatedResponder{started: make(chan struct{}), gates: make(chan chan struct{}, 2)}
	a := newTestAgent("0", g)

	first, second := make(chan struct{}), make(chan struct{})
	g.gates <- first
	g.gates <- second

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
		}()
	}
	<-g.started
	<-g.started
	assert.Equal(t, StateWorking, a.State())

	close(first)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateWorking, a.State(), "one prompt still outstanding")

	close(second)
	wg.Wait()
	assert.Equal(t, StateIdle, a.State())
}

func TestBlockedAgentStaysBlockedAfterPrompt(t *testing.T) {
	var a *Agent
	var during State
	a = newTestAgent("0", &mockResponder{during: func() { during = a.State() }})

	a.Block()
	_, _ = a.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
	assert.Equal(t, StateWorking, during)
	assert.Equal(t, StateBlocked, a.State())
}

func TestMessagingLogsBothSides(t *testing.T) {
	a := newTestAgent("a", nil)
	b := newTestAgent("b", nil)

	a.SendMessage(b, "hello")
	b.SendMessage(a, "hi back")
	a.SendMessage(b, "bye")

	aLog := a.Log()
	bLog := b.Log()
	require.Len(t, aLog, 3)
	require.Len(t, bLog, 3)

	assert.Equal(t, "Communicating with b: hello", aLog[0].Text)
	assert.Equal(t, "Received message from b: hi back", aLog[1].Text)
	assert.Equal(t, "Communicating with b: bye", aLog[2].Text)

	assert.Equal(t, "Received message from a: hello", bLog[0].Text)
	assert.Equal(t, "Communicating with a: hi back", bLog[1].Text)
	assert.Equal(t, "Received message from a: bye", bLog[2].Text)
}

func TestLogReturnsCopy(t *testing.T) {
	a := newTestAgent("a", nil)
	b := newTestAgent("b", nil)
	a.SendMessage(b, "x")

	entries := a.Log()
	entries[0].Text = "tampered"
	assert.Equal(t, "Communicating with b: x", a.Log()[0].Text)
}

func TestLogEntryString(t *testing.T) {
	e := LogEntry{Timestamp: "2024-11-05T10:30:00.000Z", Text: "did a thing"}
	assert.Equal(t, "[2024-11-05T10:30:00.000Z] did a thing", e.String())
}
