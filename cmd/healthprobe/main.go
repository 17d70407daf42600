// Command healthprobe runs the periodic liveness checks against a chain and
// its MASP indexer, exposing /healthz and /metrics until killed.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"namadrift/internal/chainquery"
	"namadrift/internal/probe"
	"namadrift/internal/sdk"
	"namadrift/internal/wlog"
)

func main() {
	rpc := flag.String("rpc", "", "chain RPC endpoint")
	chainID := flag.String("chain-id", "probe", "chain identifier for the read-only RPC client")
	maspIndexerURL := flag.String("masp-indexer-url", "", "base URL for the MASP indexer")
	listenAddr := flag.String("listen", ":9090", "address to serve /healthz and /metrics on")
	logFile := flag.String("log-file", "", "optional rotating log file path")
	flag.Parse()

	logger := wlog.Setup(wlog.Options{Service: "healthprobe", LogFile: *logFile})

	if *rpc == "" || *maspIndexerURL == "" {
		fmt.Fprintln(os.Stderr, "healthprobe: --rpc and --masp-indexer-url are required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sdk.New(*rpc, *chainID)
	if err != nil {
		panic(fmt.Sprintf("healthprobe: failed to construct chain client: %v", err))
	}
	querier := chainquery.New(client)

	reg := prometheus.NewRegistry()
	metrics := probe.NewMetrics(reg)
	healthy := probe.NewHealthy()

	scheduler := &probe.Scheduler{
		Checks: probe.All(),
		Collaborators: probe.Collaborators{
			Querier:        querier,
			MaspIndexerURL: *maspIndexerURL,
		},
		State:   &probe.State{},
		Metrics: metrics,
		Healthy: healthy,
		Logger:  logger,
	}

	server := &http.Server{
		Addr:    *listenAddr,
		Handler: probe.NewServer(reg, healthy.Flag()),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go scheduler.Run(ctx)

	logger.Info("healthprobe listening", "addr", *listenAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("healthprobe server exited", "error", err)
		os.Exit(1)
	}
}
