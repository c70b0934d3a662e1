package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/maxpoletaev/hostsync/membership"
	"github.com/maxpoletaev/hostsync/reconcile"
	"github.com/maxpoletaev/hostsync/telemetry"
)

const leaveTimeout = 5 * time.Second

type shutdownFunc func(ctx context.Context) error

var noopShutdown = func(ctx context.Context) error { return nil }

func setupLogger() (kitlog.Logger, shutdownFunc) {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

	if !opts.Verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return logger, noopShutdown
}

func setupHandler(logger kitlog.Logger) *reconcile.Handler {
	conf := reconcile.DefaultConfig()
	conf.HostsFile = opts.Hosts.File
	conf.InPlace = opts.Hosts.InPlace
	conf.Logger = kitlog.With(logger, "component", "reconcile")

	if opts.Hosts.StaticEntries != "" {
		static, err := reconcile.LoadStatic(opts.Hosts.StaticEntries)
		if err != nil {
			panic(fmt.Sprintf("failed to load static entries: %v", err))
		}

		level.Info(logger).Log("msg", "loaded static entries", "count", len(static))
		conf.Static = static
	}

	return reconcile.New(conf)
}

func setupAgent(logger kitlog.Logger) (*membership.Agent, shutdownFunc) {
	conf := membership.DefaultConfig()
	conf.NodeName = opts.Node.Name
	conf.Role = opts.Node.Role
	conf.BindAddr = opts.Gossip.BindAddr
	conf.BindPort = opts.Gossip.BindPort
	conf.AdvertiseAddr = opts.Gossip.AdvertiseAddr
	conf.AdvertisePort = opts.Gossip.AdvertisePort
	conf.ProbeTimeout = time.Millisecond * time.Duration(opts.Gossip.ProbeTimeout)
	conf.ProbeInterval = time.Millisecond * time.Duration(opts.Gossip.ProbeInterval)
	conf.Logger = logger

	agent, err := membership.Start(conf)
	if err != nil {
		panic(fmt.Sprintf("failed to start gossip agent: %v", err))
	}

	shutdown := func(ctx context.Context) error {
		if err := agent.Leave(leaveTimeout); err != nil {
			return fmt.Errorf("failed to leave cluster: %w", err)
		}

		return nil
	}

	return agent, shutdown
}

func setupMetricsServer(wg *sync.WaitGroup, logger kitlog.Logger) (*http.Server, shutdownFunc) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())

	server := &http.Server{
		Addr:              opts.Metrics.BindAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := server.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				panic(fmt.Sprintf("failed to start metrics server: %v", err))
			}
		}
	}()

	shutdown := func(ctx context.Context) error {
		logger.Log("msg", "shutting down metrics server")

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}

		return nil
	}

	return server, shutdown
}
