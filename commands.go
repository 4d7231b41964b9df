package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bootstrap/function"
	"bootstrap/message"
	"bootstrap/repl"
)

const (
	defaultOutputPath = "generated/main.go"
	defaultTask       = "Write a Go program that prints the first ten Fibonacci numbers."

	codegenInstructions = "You are a senior Go engineer. Reply with exactly one fenced code block containing the complete file and nothing else."
	assistantPersona    = "You are a helpful assistant."
)

// runGenerate asks agent 0 for a source file, writes the code to disk and
// hands the result to a reviewer agent.
func runGenerate(ctx context.Context, a *app, args []string) error {
	path := defaultOutputPath
	if len(args) > 0 {
		path = args[0]
	}
	task := defaultTask
	if len(args) > 1 {
		task = strings.Join(args[1:], " ")
	}

	writer := a.newAgent("0")
	reviewer := a.newAgent("1")
	if err := a.register(writer, reviewer); err != nil {
		return err
	}
	reviewer.Block()

	req, err := message.NewPromptRequest(
		message.Developer(codegenInstructions),
		message.User(task),
	)
	if err != nil {
		return err
	}

	reply, err := writer.SendPrompt(ctx, req)
	if err != nil {
		return err
	}
	if reply.Empty() {
		a.logger.Warn("Model produced no content; nothing written", "path", path)
		return nil
	}

	if err := a.sink.Write(message.ExtractCode(reply.Content), path); err != nil {
		return err
	}
	reviewer.Unblock()
	writer.SendMessage(reviewer, fmt.Sprintf("wrote %s", a.sink.Resolve(path)))

	a.saveUsage()
	return nil
}

// runHaiku sends the classic two-message prompt and prints the reply.
func runHaiku(ctx context.Context, a *app, _ []string) error {
	req := message.PromptRequest{
		message.System(assistantPersona),
		message.User("Write a haiku about recursion in programming."),
	}

	reply, err := a.newAgent("0").SendPrompt(ctx, req)
	if err != nil {
		return err
	}
	if reply.Empty() {
		fmt.Println("(no content produced)")
		return nil
	}
	fmt.Println(reply.Content)
	return nil
}

// runServe exposes the service over HTTP until ctx is cancelled.
func runServe(ctx context.Context, a *app, _ []string) error {
	handler := function.NewHandler(a.completer, a.logger,
		function.WithEnvironment(a.cfg.Region, a.cfg.AvailabilityZones))
	e := function.NewServer(handler, a.registry)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", "addr", a.cfg.ListenAddr)
		errCh <- e.Start(a.cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// runREPL starts an interactive conversation with agent 0.
func runREPL(ctx context.Context, a *app, _ []string) error {
	r := repl.NewREPL(a.newAgent("0"), a.sink, os.Stdin, os.Stdout, assistantPersona)
	r.Start(ctx)
	a.saveUsage()
	return nil
}
