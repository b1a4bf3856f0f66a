package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bobg/bed"
	"github.com/bobg/bed/audit"
)

func (c *maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	start := fs.String("start", "", "start after this ref")
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var startRef bed.Ref
	if *start != "" {
		startRef, err = parseRef(*start)
		if err != nil {
			return err
		}
	}

	return c.s.ListRefs(ctx, startRef, func(ref bed.Ref) error {
		fmt.Println(ref)
		return nil
	})
}

func (c *maincmd) log(ctx context.Context, fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		return errors.Wrap(err, "parsing args")
	}

	return c.alog.Each(ctx, func(r audit.Record) error {
		line := fmt.Sprintf("%d %s %s", r.ID, r.At.Format(time.RFC3339), r.Command)
		if len(r.Args) > 0 {
			line += " " + strings.Join(r.Args, " ")
		}
		if r.OK {
			line += " ok"
			if r.Output != "" {
				line += " -> " + r.Output
			}
		} else {
			line += fmt.Sprintf(" FAILED: %s", r.Err)
		}
		fmt.Println(line)
		return nil
	})
}
