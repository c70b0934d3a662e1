package main

import (
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/maxpoletaev/hostsync/reconcile"
)

func setupLogger() kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

	if !opts.Verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return logger
}

func setupHandler(logger kitlog.Logger) (*reconcile.Handler, error) {
	conf := reconcile.DefaultConfig()
	conf.HostsFile = opts.HostsFile
	conf.InPlace = opts.InPlace
	conf.Logger = logger

	if opts.StaticEntries != "" {
		static, err := reconcile.LoadStatic(opts.StaticEntries)
		if err != nil {
			return nil, err
		}

		conf.Static = static
	}

	return reconcile.New(conf), nil
}
