package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootstrap/agent"
	"bootstrap/logging"
	"bootstrap/message"
)

type echoResponder struct {
	requests []message.PromptRequest
}

func (e *echoResponder) GenerateResponse(_ context.Context, req message.PromptRequest) (message.Message, error) {
	e.requests = append(e.requests, req.Clone())
	last := req[len(req)-1].Content
	return message.Assistant("```\n" + strings.ToUpper(last) + "\n```"), nil
}

type memSink struct {
	files map[string]string
}

func (m *memSink) Write(content, path string) error {
	m.files[path] = content
	return nil
}

func TestREPLConversation(t *testing.T) {
	responder := &echoResponder{}
	a := agent.New("0", responder, agent.WithLogger(logging.Discard()))
	sink := &memSink{files: map[string]string{}}

	in := strings.NewReader("hello\nagain\nsave out.txt --code\nreset\nfresh\nquit\n")
	var out bytes.Buffer
	r := NewREPL(a, sink, in, &out, "be loud")
	r.Start(context.Background())

	require.Len(t, responder.requests, 3)
	assert.Equal(t, message.PromptRequest{message.System("be loud"), message.User("hello")}, responder.requests[0])
	assert.Equal(t, message.PromptRequest{
		message.System("be loud"),
		message.User("hello"),
		message.Assistant("```\nHELLO\n```"),
		message.User("again"),
	}, responder.requests[1])
	assert.Equal(t, message.PromptRequest{message.System("be loud"), message.User("fresh")}, responder.requests[2])

	assert.Equal(t, "AGAIN\n", sink.files["out.txt"])
	assert.Contains(t, out.String(), "Goodbye")
	assert.Len(t, a.Log(), 3)
}
