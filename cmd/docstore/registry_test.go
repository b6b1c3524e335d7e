package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"docstore/internal/client"
	"docstore/internal/ops"
	"docstore/internal/store/memory"
)

func testClient() *client.Client {
	return client.New(ops.New(memory.New()), nil)
}

func TestRegistryDispatchKnown(t *testing.T) {
	reg := NewCommandRegistry()
	var gotArgs []string
	reg.Register("echo", Command{
		Handler: func(ctx CommandContext) error {
			gotArgs = ctx.Args
			_, err := ctx.Out.Write([]byte(strings.Join(ctx.Args, ",")))
			return err
		},
	})

	var out bytes.Buffer
	if err := reg.Dispatch(context.Background(), testClient(), &out, []string{"echo", "a", "b"}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "a,b" || len(gotArgs) != 2 {
		t.Fatalf("out = %q, args = %v", out.String(), gotArgs)
	}
}

func TestRegistryDispatchUnknown(t *testing.T) {
	reg := NewCommandRegistry()
	err := reg.Dispatch(context.Background(), testClient(), &bytes.Buffer{}, []string{"nope"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: nope") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryMinArgs(t *testing.T) {
	reg := NewCommandRegistry()
	called := false
	reg.Register("get", Command{
		Usage:   "get <collection> <id>",
		MinArgs: 2,
		Handler: func(CommandContext) error { called = true; return nil },
	})
	err := reg.Dispatch(context.Background(), testClient(), &bytes.Buffer{}, []string{"get", "users"})
	if !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if called {
		t.Fatal("handler should not run without enough args")
	}
}

func TestRegistryHandlerUsageError(t *testing.T) {
	reg := NewCommandRegistry()
	reg.Register("x", Command{
		Usage:   "x <thing>",
		Handler: func(CommandContext) error { return errUsage },
	})
	err := reg.Dispatch(context.Background(), testClient(), &bytes.Buffer{}, []string{"x"})
	if !errors.Is(err, errUsage) || !strings.Contains(err.Error(), "x <thing>") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryHelpText(t *testing.T) {
	reg := NewCommandRegistry()
	reg.Register("b", Command{Usage: "b <arg>", Help: "second", Handler: func(CommandContext) error { return nil }})
	reg.Register("a", Command{Help: "first", Handler: func(CommandContext) error { return nil }})

	help := reg.HelpText()
	if !strings.Contains(help, "b <arg>") || !strings.Contains(help, "first") {
		t.Fatalf("help missing entries:\n%s", help)
	}
	if strings.Index(help, "b <arg>") > strings.Index(help, "first") {
		t.Fatalf("help should follow registration order:\n%s", help)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	reg := NewCommandRegistry()
	reg.Register("x", Command{Help: "old", Handler: func(CommandContext) error { return nil }})
	reg.Register("x", Command{Help: "new", Handler: func(CommandContext) error { return errors.New("new") }})

	err := reg.Dispatch(context.Background(), testClient(), &bytes.Buffer{}, []string{"x"})
	if err == nil || err.Error() != "new" {
		t.Fatalf("expected overwritten handler, got %v", err)
	}
	if strings.Count(reg.HelpText(), "  x ") != 1 {
		t.Fatalf("overwrite should not duplicate help entry:\n%s", reg.HelpText())
	}
}

func TestRegisterNilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewCommandRegistry().Register("x", Command{})
}
