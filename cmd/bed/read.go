package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"
)

func (c *maincmd) read(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	args = fs.Args()
	if len(args) != 1 {
		return usageError("usage: bed read <digest>")
	}

	ref, err := parseRef(args[0])
	if err != nil {
		return err
	}

	blob, err := c.s.Get(ctx, ref)
	if err != nil {
		return errors.Wrapf(err, "getting blob %s", ref)
	}
	_, err = os.Stdout.Write(blob)
	return errors.Wrap(err, "writing blob to stdout")
}
