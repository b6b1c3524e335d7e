package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"docstore/internal/client"
	"docstore/internal/store"
)

func registerCommands(reg *CommandRegistry) {
	reg.Register("help", Command{
		Help: "list commands",
		Handler: func(ctx CommandContext) error {
			_, err := io.WriteString(ctx.Out, reg.HelpText())
			return err
		},
	})

	reg.Register("get", Command{
		Usage:   "get <collection> <id>",
		Help:    "print one record",
		MinArgs: 2,
		Handler: handleGet,
	})

	reg.Register("all", Command{
		Usage:   "all <collection>",
		Help:    "print every record in a collection",
		MinArgs: 1,
		Handler: handleAll,
	})

	reg.Register("ids", Command{
		Usage:   "ids <collection>",
		Help:    "print the ids in a collection",
		MinArgs: 1,
		Handler: handleIDs,
	})

	reg.Register("count", Command{
		Usage:   "count <collection>",
		Help:    "print the number of records in a collection",
		MinArgs: 1,
		Handler: handleCount,
	})

	reg.Register("exists", Command{
		Usage:   "exists <collection> <id>",
		Help:    "print whether a record exists",
		MinArgs: 2,
		Handler: handleExists,
	})

	reg.Register("create", Command{
		Usage:   "create <collection> <json>",
		Help:    "create a record; fails if the id is taken (id generated when missing)",
		MinArgs: 2,
		Handler: handleWrite((*client.Collection).Create, true),
	})

	reg.Register("create-many", Command{
		Usage:   "create-many <collection> <json-array>",
		Help:    "create several records, or none if any id is taken",
		MinArgs: 2,
		Handler: handleCreateMany,
	})

	reg.Register("update", Command{
		Usage:   "update <collection> <json>",
		Help:    "replace an existing record",
		MinArgs: 2,
		Handler: handleWrite((*client.Collection).Update, false),
	})

	reg.Register("upsert", Command{
		Usage:   "upsert <collection> <json>",
		Help:    "create or replace a record (id generated when missing)",
		MinArgs: 2,
		Handler: handleWrite((*client.Collection).Upsert, true),
	})

	reg.Register("delete", Command{
		Usage:   "delete <collection> <id>",
		Help:    "delete a record (no error if missing)",
		MinArgs: 2,
		Handler: handleDelete,
	})

	reg.Register("delete-many", Command{
		Usage:   "delete-many <collection> <id>...",
		Help:    "delete several records, or none if any is missing",
		MinArgs: 2,
		Handler: handleDeleteMany,
	})

	reg.Register("delete-all", Command{
		Usage:   "delete-all <collection>",
		Help:    "delete every record in a collection",
		MinArgs: 1,
		Handler: handleDeleteAll,
	})

	reg.Register("edit", Command{
		Usage:   "edit <collection> <id> <json-patch>",
		Help:    "merge top-level fields into an existing record",
		MinArgs: 3,
		Handler: handleEdit,
	})
}

func collection(ctx CommandContext) (*client.Collection, error) {
	return ctx.Client.Collection(ctx.Args[0])
}

// jsonArg joins args[from:] so unquoted JSON split by the shell still parses.
func jsonArg(ctx CommandContext, from int) []byte {
	return []byte(strings.Join(ctx.Args[from:], " "))
}

func parseRecord(b []byte) (store.Record, error) {
	var r store.Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("parsing record: expected a JSON object")
	}
	return r, nil
}

// withID assigns a random id to records that lack one.
func withID(r store.Record) store.Record {
	if _, ok := r["id"]; !ok {
		r["id"] = uuid.NewString()
	}
	return r
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func handleGet(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	r, err := c.Get(ctx.Ctx, ctx.Args[1])
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, r)
}

func handleAll(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	rs, err := c.All(ctx.Ctx)
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, rs)
}

func handleIDs(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	ids, err := c.IDs(ctx.Ctx)
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, ids)
}

func handleCount(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	n, err := c.Count(ctx.Ctx)
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, n)
}

func handleExists(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	ok, err := c.Exists(ctx.Ctx, ctx.Args[1])
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, ok)
}

type writeFunc func(*client.Collection, context.Context, store.Record) (store.Record, error)

// handleWrite parses the record argument and hands it to write. With
// generateID a record without an id gets a random one.
func handleWrite(write writeFunc, generateID bool) CommandHandler {
	return func(ctx CommandContext) error {
		c, err := collection(ctx)
		if err != nil {
			return err
		}
		r, err := parseRecord(jsonArg(ctx, 1))
		if err != nil {
			return err
		}
		if generateID {
			r = withID(r)
		}
		out, err := write(c, ctx.Ctx, r)
		if err != nil {
			return err
		}
		return printJSON(ctx.Out, out)
	}
}

func handleCreateMany(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	var rs []store.Record
	if err := json.Unmarshal(jsonArg(ctx, 1), &rs); err != nil {
		return fmt.Errorf("parsing records: %w", err)
	}
	for i, r := range rs {
		if r == nil {
			return fmt.Errorf("parsing records: element %d is not a JSON object", i)
		}
		rs[i] = withID(r)
	}
	out, err := c.CreateMany(ctx.Ctx, rs)
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, out)
}

func handleDelete(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	return c.Delete(ctx.Ctx, ctx.Args[1])
}

func handleDeleteMany(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	return c.DeleteMany(ctx.Ctx, ctx.Args[1:])
}

func handleDeleteAll(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	return c.DeleteAll(ctx.Ctx)
}

func handleEdit(ctx CommandContext) error {
	c, err := collection(ctx)
	if err != nil {
		return err
	}
	id := ctx.Args[1]
	patch, err := parseRecord(jsonArg(ctx, 2))
	if err != nil {
		return err
	}
	out, err := c.Edit(ctx.Ctx, id, func(_ context.Context, current store.Record) (store.Record, error) {
		return merge(current, patch), nil
	})
	if err != nil {
		return err
	}
	return printJSON(ctx.Out, out)
}

// merge overlays patch's top-level fields onto r. The id is kept.
func merge(r, patch store.Record) store.Record {
	for k, v := range patch {
		if k == "id" {
			continue
		}
		r[k] = v
	}
	return r
}
