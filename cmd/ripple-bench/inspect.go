package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ripplekit/ripple/pkg/inspect"
	"github.com/ripplekit/ripple/pkg/ripple"
)

func inspectCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		workload bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve a live event stream and metrics endpoint",
		Long: `inspect starts the inspector server and installs its hub as the
runtime probe. Connect a WebSocket client to /events for the event
stream; /metrics serves Prometheus metrics.

With --workload, a small synthetic reactive graph keeps mutating so the
stream has something to show.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(addr, interval, workload)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:6380", "listen address")
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "workload write interval")
	cmd.Flags().BoolVar(&workload, "workload", true, "run a synthetic workload")

	return cmd
}

func runInspect(addr string, interval time.Duration, workload bool) error {
	logger := slog.Default()

	ripple.EnableMetrics()

	hub := inspect.NewHub(logger)
	ripple.SetProbe(hub)
	defer ripple.SetProbe(nil)

	srv := inspect.NewServer(hub, inspect.WithAddress(addr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if workload {
		go runWorkload(ctx, interval)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// runWorkload mutates a small reactive graph on a ticker so connected
// inspectors see a steady stream of events.
func runWorkload(ctx context.Context, interval time.Duration) {
	state := ripple.NewObject(map[string]any{"tick": 0})
	items := ripple.NewList(nil)
	queue := ripple.NewQueue(ripple.WithAutoFlush())
	defer queue.Close()

	scope := ripple.NewScope(nil)
	defer scope.Dispose()

	scope.Run(func() {
		ripple.NewEffect(func() any {
			return state.Get("tick")
		}, ripple.WithScheduler(queue.EnqueueEffect))

		ripple.NewEffect(func() any {
			return items.Len()
		}, ripple.WithScheduler(queue.EnqueueEffect))
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			state.Set("tick", tick)
			items.Push(tick)
			if items.Len() > 32 {
				items.Shift()
			}
		}
	}
}
