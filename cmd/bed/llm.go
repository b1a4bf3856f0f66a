package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobg/bed"
	"github.com/bobg/bed/llm"
)

func (c *maincmd) llm(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	args = fs.Args()
	if len(args) != 3 {
		return usageError("usage: bed llm <model> <system-prompt> <user-prompt>")
	}

	client, err := llm.NewFromEnv()
	if err != nil {
		return err
	}

	// Each fragment is teed to stdout as it arrives;
	// nothing is persisted until the stream completes.
	text, err := client.Stream(ctx, args[0], args[1], args[2], func(fragment string) error {
		_, err := io.WriteString(os.Stdout, fragment)
		return errors.Wrap(err, "writing fragment to stdout")
	})
	if err != nil {
		return err
	}

	// Keep stored text line-delimited.
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	ref, _, err := c.s.Put(ctx, bed.Blob(text))
	if err != nil {
		return errors.Wrap(err, "storing completion")
	}
	c.out = &ref

	// Stdout carries the streamed text; the digest goes to stderr.
	fmt.Fprintln(os.Stderr, ref)
	return nil
}
