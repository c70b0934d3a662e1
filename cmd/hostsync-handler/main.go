package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jessevdk/go-flags"

	"github.com/maxpoletaev/hostsync/internal/multierror"
	"github.com/maxpoletaev/hostsync/membership"
)

// run handles a single event with member records read from stdin and returns
// the exit code. Records that could not be applied are logged but do not fail
// the run, as long as the hosts file has been saved.
func run(logger kitlog.Logger, stdin io.Reader) int {
	kind := membership.ParseEventKind(opts.Event)
	if kind == membership.EventUnknown {
		level.Warn(logger).Log("msg", "unknown event kind", "event", opts.Event)
	}

	var members []membership.Member

	if kind.IsMember() {
		var (
			err       error
			malformed *multierror.Error[int]
		)

		members, err = membership.ReadMembers(stdin)
		if errors.As(err, &malformed) {
			for _, line := range malformed.Keys() {
				lineErr, _ := malformed.Get(line)
				level.Warn(logger).Log("msg", "skipping malformed member record", "line", line, "err", lineErr)
			}
		} else if err != nil {
			level.Error(logger).Log("msg", "failed to read member records", "err", err)
			return 1
		}
	}

	handler, err := setupHandler(logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to load static entries", "path", opts.StaticEntries, "err", err)
		return 1
	}

	err = handler.Handle(membership.Event{Kind: kind, Members: members})

	var rejected *multierror.Error[string]
	if errors.As(err, &rejected) {
		level.Warn(logger).Log("msg", "some member records were not applied", "count", rejected.Len())
	} else if err != nil {
		level.Error(logger).Log("msg", "failed to update hosts file", "path", opts.HostsFile, "err", err)
		return 1
	}

	level.Info(logger).Log("msg", "event handled", "event", kind, "members", len(members))

	return 0
}

func main() {
	p := flags.NewParser(&opts, flags.Default)

	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Println("cli error:", err)
		}

		os.Exit(2)
	}

	os.Exit(run(setupLogger(), os.Stdin))
}
