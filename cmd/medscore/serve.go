package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/medscore/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(a)
		},
	}
	cmd.Flags().String("addr", "", "API listen address (default from config: :8080)")
	cmd.Flags().String("metrics-addr", "", "Metrics listen address, empty to disable (default from config: :9090)")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("server.metrics-addr", cmd.Flags().Lookup("metrics-addr"))
	return cmd
}

func runServe(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := server.NewRegistry()
	metrics := server.NewMetrics(reg)

	err := server.Serve(ctx, server.Listeners{
		Addr:           a.cfg.Server.Addr,
		Handler:        server.NewRouter(a.engine, a.dosing, metrics, a.logger),
		MetricsAddr:    a.cfg.Server.MetricsAddr,
		MetricsHandler: server.NewMetricsRouter(reg),
	}, a.logger)
	if err != nil {
		return exitError(1, "%v", err)
	}
	return nil
}
