package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bootstrap/config"
	"bootstrap/logging"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"run":   runGenerate,
	"haiku": runHaiku,
	"serve": runServe,
	"repl":  runREPL,
	"tui":   runTUI,
}

func printHelp() {
	fmt.Println("🤖 bootstrap - prompt agents and write what they produce")
	fmt.Println()
	fmt.Println("SETUP:")
	fmt.Printf("  Set %s or create a .env file\n", config.EnvAPIKey)
	fmt.Printf("  Optional: %s, %s, %s, %s, %s, %s\n",
		config.EnvModel, config.EnvBaseURL, config.EnvAPIKeys,
		config.EnvRequestsPerMinute, config.EnvOutputRoot, config.EnvListenAddr)
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  bootstrap run [path] [task...]  Generate a source file and write it under the output root")
	fmt.Println("  bootstrap haiku                 Ask for a haiku about recursion")
	fmt.Println("  bootstrap serve                 Serve the HTTP entrypoint (/base-agent, /health, /metrics)")
	fmt.Println("  bootstrap repl                  Chat with an agent in the terminal")
	fmt.Println("  bootstrap tui [prompt]          Send one prompt and browse the rendered reply")
}

func run() int {
	logger := logging.New(os.Stderr)
	config.LoadEnv(logger)

	name, args := "run", os.Args[1:]
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	if name == "help" || name == "-h" || name == "--help" {
		printHelp()
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printHelp()
		return 2
	}

	a, err := newApp(logger)
	if err != nil {
		logger.Error("Failed to start", "error", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, a, args); err != nil {
		logger.Error("Command failed", "command", name, "error", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
