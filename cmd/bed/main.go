// Command bed is a CLI content-addressable store with derived-content editing.
//
// Blobs are immutable and keyed by the sha256 digest of their content.
// Editing commands read a blob, transform its text, and store the result
// as a new blob, printing the new digest. Every invocation, successful or
// not, appends one record to a durable audit log.
package main

import (
	"context"
	stderrs "errors"
	"flag"
	"fmt"
	"os"

	"github.com/bobg/subcmd"
	"github.com/rs/zerolog"

	"github.com/bobg/bed"
	"github.com/bobg/bed/audit"
	"github.com/bobg/bed/edit"
	"github.com/bobg/bed/llm"
	_ "github.com/bobg/bed/store/file"
	_ "github.com/bobg/bed/store/lru"
	_ "github.com/bobg/bed/store/mem"
	_ "github.com/bobg/bed/store/pg"
)

type maincmd struct {
	s    bed.Store
	alog *audit.Log

	// out is the digest produced by the subcommand, if any,
	// for the audit record.
	out *bed.Ref
}

// sub adapts a subcommand method to the function shape subcmd.Run
// invokes via reflection: with no declared params it passes only the
// context and the argument slice, so the FlagSet the method parses is
// created here.
func sub(f func(context.Context, *flag.FlagSet, []string) error) subcmd.Subcmd {
	return subcmd.Subcmd{F: func(ctx context.Context, args []string) error {
		return f(ctx, flag.NewFlagSet("", flag.ContinueOnError), args)
	}}
}

func (c *maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"write":        sub(c.write),
		"read":         sub(c.read),
		"replace":      sub(c.replace),
		"replace-all":  sub(c.replaceAll),
		"line-insert":  sub(c.lineInsert),
		"line-delete":  sub(c.lineDelete),
		"line-replace": sub(c.lineReplace),
		"append":       sub(c.append),
		"prepend":      sub(c.prepend),
		"llm":          sub(c.llm),
		"ls":           sub(c.ls),
		"log":          sub(c.log),
	}
}

func main() {
	config := flag.String("config", "bedconf.json", "path to config file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	os.Exit(run(context.Background(), logger, *config, flag.Args()))
}

// run executes one invocation end to end:
// the command's own effect first, then exactly one audit record,
// then the exit code. No other function terminates the process.
func run(ctx context.Context, logger zerolog.Logger, configPath string, args []string) int {
	conf, err := loadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("loading config")
		return 1
	}

	s, auditPath, err := openStore(ctx, conf, logger)
	if err != nil {
		logger.Error().Err(err).Msg("opening store")
		return 1
	}

	alog, err := audit.Open(ctx, auditPath)
	if err != nil {
		logger.Error().Err(err).Msg("opening audit log")
		return 1
	}
	defer alog.Close()

	mc := &maincmd{s: s, alog: alog}

	// A missing or unrecognized command is still an invocation
	// and still gets its audit record.
	var (
		cmdErr  error
		cmdName string
		cmdArgs []string
	)
	switch {
	case len(args) == 0:
		cmdErr = usageError("missing command")
	default:
		cmdName, cmdArgs = args[0], args[1:]
		if _, ok := mc.Subcmds()[cmdName]; !ok {
			cmdErr = usageError(fmt.Sprintf("unknown command %q", cmdName))
		} else {
			cmdErr = subcmd.Run(ctx, mc, args)
		}
	}

	// The audit record is written strictly after the command's own
	// store effects have completed or definitively failed.
	recErr := alog.Record(ctx, cmdName, cmdArgs, outcome(cmdErr, mc.out))

	if cmdErr != nil {
		logger.Error().Err(cmdErr).Msg("command failed")
	}
	if recErr != nil {
		// Never mask the command's own result with an audit failure.
		logger.Error().Err(recErr).Msg("recording audit entry")
		if cmdErr == nil {
			return 1
		}
	}
	if cmdErr != nil {
		return exitCode(cmdErr)
	}
	return 0
}

func outcome(err error, out *bed.Ref) audit.Outcome {
	if err != nil {
		return audit.Failure(err)
	}
	return audit.Success(out)
}

// usageError is an argument-count or argument-shape error
// at the command boundary.
type usageError string

func (e usageError) Error() string { return string(e) }

func exitCode(err error) int {
	var (
		ue usageError
		se *llm.StatusError
	)
	switch {
	case stderrs.As(err, &ue):
		return 2
	case stderrs.Is(err, bed.ErrNotFound):
		return 3
	case stderrs.Is(err, edit.ErrRange):
		return 4
	case stderrs.As(err, &se):
		return 5
	}
	return 1
}

func parseRef(s string) (bed.Ref, error) {
	ref, err := bed.RefFromHex(s)
	if err != nil {
		return bed.Zero, usageError(fmt.Sprintf("bad digest %q: %s", s, err))
	}
	return ref, nil
}
