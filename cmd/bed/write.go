package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

func (c *maincmd) write(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	args = fs.Args()
	if len(args) != 1 {
		return usageError("usage: bed write (- | <path>)")
	}

	var blob []byte
	if args[0] == "-" {
		blob, err = io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "reading stdin")
		}
	} else {
		blob, err = os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}
	}

	ref, _, err := c.s.Put(ctx, blob)
	if err != nil {
		return errors.Wrap(err, "storing blob")
	}
	c.out = &ref

	fmt.Println(ref)
	return nil
}
