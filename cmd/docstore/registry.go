package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"docstore/internal/client"
)

var errUsage = errors.New("usage")

// CommandContext holds the state available to command handlers.
type CommandContext struct {
	Ctx    context.Context
	Client *client.Client
	Out    io.Writer
	Args   []string
}

// CommandHandler runs one command. Returning errUsage prints the command's
// usage line.
type CommandHandler func(ctx CommandContext) error

// Command describes a registered CLI command.
type Command struct {
	Usage   string // full usage for help (e.g., "get <collection> <id>"); defaults to command name
	Help    string
	MinArgs int
	Handler CommandHandler
}

// CommandRegistry maps command names to handlers and produces help text.
type CommandRegistry struct {
	commands map[string]Command
	order    []string // insertion order for stable help output
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
	}
}

// Register adds a command. Registering the same name twice overwrites the
// previous entry. Panics if cmd.Handler is nil.
func (r *CommandRegistry) Register(name string, cmd Command) {
	if cmd.Handler == nil {
		panic("docstore: Register called with nil handler for " + name)
	}
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
}

// Dispatch runs the command named by args[0] with the remaining args.
func (r *CommandRegistry) Dispatch(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given (try help)")
	}
	name := args[0]
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", name)
	}
	rest := args[1:]
	if len(rest) < cmd.MinArgs {
		return fmt.Errorf("%w: %s", errUsage, usageOf(name, cmd))
	}
	err := cmd.Handler(CommandContext{Ctx: ctx, Client: c, Out: out, Args: rest})
	if errors.Is(err, errUsage) {
		return fmt.Errorf("%w: %s", errUsage, usageOf(name, cmd))
	}
	return err
}

// HelpText lists all registered commands in registration order.
func (r *CommandRegistry) HelpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, name := range r.order {
		cmd := r.commands[name]
		fmt.Fprintf(&b, "  %-44s %s\n", usageOf(name, cmd), cmd.Help)
	}
	return b.String()
}

func usageOf(name string, cmd Command) string {
	if cmd.Usage != "" {
		return cmd.Usage
	}
	return name
}
