package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/jessevdk/go-flags"

	"github.com/maxpoletaev/hostsync/telemetry"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	p := flags.NewParser(&opts, flags.Default)

	if _, err := p.Parse(); err != nil {
		if err.(*flags.Error).Type != flags.ErrHelp {
			fmt.Println("cli error:", err)
		}

		os.Exit(2)
	}

	appctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wg := sync.WaitGroup{}
	telemetry.SetBuildInfo(version)

	// Initialize all components.
	logger, closeLogger := setupLogger()
	handler := setupHandler(logger)
	agent, closeAgent := setupAgent(logger)

	// Components must be shut down in a particular order.
	shutdownOrder := []shutdownFunc{
		closeAgent,
		closeLogger,
	}

	if opts.Metrics.BindAddr != "" {
		_, closeMetrics := setupMetricsServer(&wg, logger)
		shutdownOrder = append([]shutdownFunc{closeMetrics}, shutdownOrder...)
	}

	// Bring the file to the canonical form and apply the static entries before
	// any membership event arrives.
	if err := handler.Handle(); err != nil {
		level.Error(logger).Log("msg", "failed to update hosts file", "err", err)
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		agent.Run(runCtx, handler)
	}()

	// Join the cluster, in case we were given any addresses to join.
	joinCtx, cancelJoin := context.WithCancel(appctx)
	if addrs := parseAddrs(opts.Gossip.JoinAddrs); len(addrs) > 0 {
		go func() {
			_ = agent.Join(joinCtx, addrs)
		}()
	}

	// Block until we receive a signal to shut down.
	<-appctx.Done()
	cancelJoin()
	level.Info(logger).Log("msg", "received interrupt signal, shutting down")

	// The hosts file must not be touched after the node has left.
	stopRun()
	<-runDone

	// Shutdown all components.
	for _, f := range shutdownOrder {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		if err := f(ctx); err != nil {
			level.Error(logger).Log("msg", "failed to shutdown component", "err", err)
		}

		cancel()
	}

	// Wait for all components to finish background tasks.
	wg.Wait()
}
