package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/logging"
	"github.com/AltairaLabs/livy-mcp/internal/server"
	"github.com/AltairaLabs/livy-mcp/internal/storage/memory"
)

const serverVersion = "0.1.0"

var (
	version    = flag.Bool("version", false, "Print version and exit")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	httpMode   = flag.Bool("http", false, "Enable HTTP/SSE transport instead of stdio")
	configPath = flag.String("config", "", "Path to a livyc.yaml config file")
	noDefault  = flag.Bool("no-default-session", false, "Do not open the default session at startup")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("Livy MCP Server v" + serverVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, logCloser := logging.Setup(cfg.Log, *debug)
	defer logCloser.Close()

	grpcPort := getEnv("GRPC_PORT", config.DefaultGRPCPort)
	httpPort := getEnv("HTTP_PORT", config.DefaultHTTPPort)
	maxIdle := getEnvDuration("SESSION_MAX_IDLE", config.DefaultSessionMaxIdle)

	logger.Info("Starting Livy MCP Server",
		"version", serverVersion,
		"debug", *debug,
		"livy_url", cfg.URL,
		"livy_port", cfg.Port,
		"grpc_port", grpcPort,
		"http_mode", *httpMode,
		"http_port", httpPort,
		"session_max_idle", maxIdle,
	)

	sessionManager := server.NewSessionManager(cfg, memory.NewInMemorySessionRegistry(), logger)
	auditLogger := server.NewAuditLogger(logger)

	srvCfg := server.Config{
		Name:    "livy-mcp",
		Version: serverVersion,
	}
	mcpServer := server.NewMCPServer(srvCfg, sessionManager, auditLogger)

	logger.Info("MCP Server initialized",
		"name", srvCfg.Name,
		"version", srvCfg.Version,
		"tools", mcpServer.ToolNames(),
	)

	grpcServer := grpc.NewServer()
	server.RegisterHealth(grpcServer, sessionManager)

	ctx, cancel := context.WithCancel(context.Background())

	listenConfig := net.ListenConfig{}
	lis, err := listenConfig.Listen(ctx, "tcp", fmt.Sprintf(":%s", grpcPort))
	if err != nil {
		cancel()
		log.Fatalf("Failed to listen on port %s: %v", grpcPort, err)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting gRPC health server", "port", grpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
			cancel()
		}
	}()

	// health stays NOT_SERVING until the default session is idle
	if !*noDefault {
		go func() {
			info, err := sessionManager.Open(ctx, config.DefaultSessionName, nil)
			if err != nil {
				logger.Error("Failed to open default session", "error", err)
				return
			}
			logger.Info("Default session ready", "session_id", info.ID, "host", info.Host)
		}()
	}

	go func() {
		if *httpMode {
			if err := mcpServer.ServeHTTPWithLogger(":"+httpPort, logger); err != nil {
				logger.Error("MCP server error", "error", err)
				cancel()
			}
		} else {
			logger.Info("Starting MCP server on stdio")
			if err := mcpServer.Serve(); err != nil {
				logger.Error("MCP server error", "error", err)
				cancel()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(config.DefaultCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if closed := sessionManager.CloseIdle(ctx, maxIdle); closed > 0 {
					logger.Info("Closed idle sessions", "count", closed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("Context canceled")
	}

	logger.Info("Shutting down gracefully")
	cancel()

	// remote sessions are deleted with a fresh context; ctx is already done
	closeCtx, closeCancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	sessionManager.Shutdown(closeCtx)
	closeCancel()

	logger.Info("Stopping gRPC server")
	shutdownComplete := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		logger.Info("gRPC server stopped gracefully")
	case <-time.After(config.DefaultShutdownTimeout):
		logger.Warn("Graceful shutdown timeout, forcing stop")
		grpcServer.Stop()
		<-shutdownComplete
	}

	logger.Info("Livy MCP Server shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
