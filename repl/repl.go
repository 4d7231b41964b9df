// Package repl runs an interactive conversation with a single agent.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"bootstrap/agent"
	"bootstrap/message"
	"bootstrap/usage"
)

// REPL keeps the ordered conversation history and replays it on every turn.
type REPL struct {
	agent   *agent.Agent
	sink    usage.Writer
	scanner *bufio.Scanner
	out     io.Writer
	history message.PromptRequest
	last    string
}

// NewREPL reads commands from in and writes to out. system, when non-empty,
// opens every conversation.
func NewREPL(a *agent.Agent, sink usage.Writer, in io.Reader, out io.Writer, system string) *REPL {
	r := &REPL{
		agent:   a,
		sink:    sink,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
	if system != "" {
		r.history = message.PromptRequest{message.System(system)}
	}
	return r
}

// History returns a copy of the conversation so far.
func (r *REPL) History() message.PromptRequest {
	return r.history.Clone()
}

func (r *REPL) Start(ctx context.Context) {
	fmt.Fprintf(r.out, "💬 Agent %s REPL\n", r.agent.ID())
	fmt.Fprintln(r.out, "Type a message, or 'help' for commands.")
	fmt.Fprintln(r.out)

	for {
		fmt.Fprint(r.out, "> ")
		if !r.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(r.scanner.Text())
		if input == "" {
			continue
		}

		fields := strings.Fields(input)
		switch strings.ToLower(fields[0]) {
		case "help":
			r.showHelp()
		case "quit", "exit", "q":
			fmt.Fprintln(r.out, "👋 Goodbye!")
			return
		case "reset":
			r.reset()
		case "save":
			r.save(fields[1:])
		default:
			r.handlePrompt(ctx, input)
		}
	}
}

func (r *REPL) handlePrompt(ctx context.Context, input string) {
	req := append(r.history.Clone(), message.User(input))

	reply, err := r.agent.SendPrompt(ctx, req)
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}

	r.history = append(req, message.Assistant(reply.Content))
	if reply.Empty() {
		fmt.Fprintln(r.out, "(no content produced)")
		return
	}
	r.last = reply.Content
	fmt.Fprintln(r.out, reply.Content)
}

func (r *REPL) reset() {
	if len(r.history) > 0 && r.history[0].Role == message.RoleSystem {
		r.history = r.history[:1]
	} else {
		r.history = nil
	}
	r.last = ""
	fmt.Fprintln(r.out, "🧹 Conversation cleared.")
}

func (r *REPL) save(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "usage: save <path> [--code]")
		return
	}
	if r.last == "" {
		fmt.Fprintln(r.out, "❌ Nothing to save yet.")
		return
	}

	content := r.last
	if len(args) > 1 && args[1] == "--code" {
		content = message.ExtractCode(content)
	}
	if err := r.sink.Write(content, args[0]); err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "💾 Saved to %s\n", args[0])
}

func (r *REPL) showHelp() {
	fmt.Fprintln(r.out, "🆘 Available commands:")
	fmt.Fprintln(r.out, "  <message>             - Send a message, keeping the conversation history")
	fmt.Fprintln(r.out, "  save <path> [--code]  - Write the last reply (or its code block) to a file")
	fmt.Fprintln(r.out, "  reset                 - Forget the conversation")
	fmt.Fprintln(r.out, "  quit                  - Exit the REPL")
}
