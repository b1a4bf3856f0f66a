package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bobg/bed/edit"
)

// editCmd runs the shared read-transform-write path of every editing command:
// resolve the source digest, apply f through the pipeline, print the new digest.
func (c *maincmd) editCmd(ctx context.Context, refstr string, f edit.Transform) error {
	ref, err := parseRef(refstr)
	if err != nil {
		return err
	}

	newRef, err := edit.Edit(ctx, c.s, ref, f)
	if err != nil {
		return err
	}
	c.out = &newRef

	fmt.Println(newRef)
	return nil
}

func (c *maincmd) replace(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 3 {
		return usageError("usage: bed replace <digest> <old> <new>")
	}
	return c.editCmd(ctx, args[0], edit.Replace(args[1], args[2]))
}

func (c *maincmd) replaceAll(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 3 {
		return usageError("usage: bed replace-all <digest> <old> <new>")
	}
	return c.editCmd(ctx, args[0], edit.ReplaceAll(args[1], args[2]))
}

func (c *maincmd) lineInsert(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 3 {
		return usageError("usage: bed line-insert <digest> <n> <text>")
	}
	n, err := parseLineNum(args[1])
	if err != nil {
		return err
	}
	return c.editCmd(ctx, args[0], edit.InsertLine(n, args[2]))
}

func (c *maincmd) lineDelete(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 2 {
		return usageError("usage: bed line-delete <digest> <n>")
	}
	n, err := parseLineNum(args[1])
	if err != nil {
		return err
	}
	return c.editCmd(ctx, args[0], edit.DeleteLine(n))
}

func (c *maincmd) lineReplace(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 3 {
		return usageError("usage: bed line-replace <digest> <n> <text>")
	}
	n, err := parseLineNum(args[1])
	if err != nil {
		return err
	}
	return c.editCmd(ctx, args[0], edit.ReplaceLine(n, args[2]))
}

func (c *maincmd) append(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 2 {
		return usageError("usage: bed append <digest> <text>")
	}
	return c.editCmd(ctx, args[0], edit.Append(args[1]))
}

func (c *maincmd) prepend(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) != 2 {
		return usageError("usage: bed prepend <digest> <text>")
	}
	return c.editCmd(ctx, args[0], edit.Prepend(args[1]))
}

func parseLineNum(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageError(fmt.Sprintf("bad line number %q", s))
	}
	return n, nil
}
