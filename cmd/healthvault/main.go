package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
	"github.com/claude/healthvault/internal/archive"
	"github.com/claude/healthvault/internal/config"
	"github.com/claude/healthvault/internal/ingest"
	"github.com/claude/healthvault/internal/mcp"
	"github.com/claude/healthvault/internal/query"
	"github.com/claude/healthvault/internal/score"
	"github.com/claude/healthvault/internal/server"
	"github.com/claude/healthvault/internal/store"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpStdio := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	mcpRemote := flag.String("mcp-server", "", "remote HealthVault URL for MCP stdio mode (skips local database)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Remote MCP mode needs no config or database at all.
	if *mcpStdio && *mcpRemote != "" {
		ds := mcp.NewHTTPClient(*mcpRemote)
		if err := mcpserver.ServeStdio(mcp.New(ds, score.NewScorer(), Version, log)); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	log.Info("HealthVault starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := store.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := store.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Archive client and tiered query router
	archiveClient := archive.NewClient(cfg.Archive.URL, cfg.Archive.APIKey)
	archiveSource := archive.NewSource(archiveClient, log)
	router := query.NewRouter(db, archiveSource, cfg.Router.RecencyThresholdDays, log)

	scorer := score.NewScorer()

	// Local MCP mode serves the router directly over stdio.
	if *mcpStdio {
		if err := mcpserver.ServeStdio(mcp.New(router, scorer, Version, log)); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Export pipeline (state cache tracks what is already archived)
	state, err := archive.OpenStateDB(cfg.Archive.StateDir)
	if err != nil {
		log.Error("failed to open archive state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	builder := aggregate.NewBuilder(scorer)
	exporter := archive.NewExporter(archiveClient, state, builder, false, log)

	ingestProvider := ingest.NewProvider(db, log)

	// Create server
	srv := server.New(db, router, ingestProvider, exporter, scorer, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
