package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/port-compliance/internal/app"
	"github.com/joseph-ayodele/port-compliance/internal/common"
	"github.com/joseph-ayodele/port-compliance/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close", "error", err)
		}
	}()

	srv := server.New(server.Deps{
		Sessions:    a.Sessions,
		Catalog:     a.Catalog,
		Exporter:    a.Exporter,
		DB:          a.DB,
		Analyzer:    a.Processor.Available,
		MaxUploadMB: cfg.System.MaxFileSizeMB,
	}, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	gs, hs := server.NewHealthServer(a.Processor.Available())

	errCh := make(chan error, 2)
	go func() {
		logger.Info("portd http listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("portd grpc health listening", "addr", cfg.Server.GRPCAddr)
		if err := server.ServeGRPC(ctx, gs, hs, lis, logger); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	gs.GracefulStop()
	logger.Info("portd stopped")
}
