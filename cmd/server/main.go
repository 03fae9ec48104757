package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aeolun/fileserv/pkg/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
)

func main() {
	// Configure logger with microsecond precision
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	// Command line flags
	configPath := flag.String("config", "~/.fileserv/config.toml", "Path to config file")
	port := flag.Int("port", 0, "TCP port to listen on (overrides config)")
	rootDir := flag.String("root", "", "Directory to serve files from (overrides config)")
	dbPath := flag.String("db", "", "Path to the download stats database (overrides config)")
	maxConns := flag.Int("max-conns", 0, "Maximum concurrent connections (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Handle --version flag
	if *version {
		fmt.Printf("fileserv %s\n", Version)
		os.Exit(0)
	}

	// Load configuration (creates default if not found)
	config, err := server.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command-line flags override config file
	if *port != 0 {
		config.Server.Port = *port
	}
	if *rootDir != "" {
		config.Storage.RootDir = *rootDir
	}
	if *dbPath != "" {
		config.Storage.DatabasePath = *dbPath
	}
	if *maxConns != 0 {
		config.Limits.MaxConnections = *maxConns
	}

	serverConfig, err := config.ToServerConfig()
	if err != nil {
		log.Fatalf("Failed to resolve config: %v", err)
	}

	// Create and start server
	srv, err := server.NewServer(serverConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if *debug {
		srv.EnableDebugLogging()
		log.Printf("Debug logging enabled")
	}

	srv.SetMetrics(server.NewMetrics())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("fileserv %s started successfully", Version)
	log.Printf("Serving files from: %s", srv.RootDir())
	if serverConfig.DatabasePath != "" {
		log.Printf("Persisting download counts to: %s", serverConfig.DatabasePath)
	} else {
		log.Printf("Download count persistence disabled")
	}

	// Metrics and health endpoints
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", srv.HealthHandler)

		addr := fmt.Sprintf("%s:%d", serverConfig.Address, serverConfig.MetricsPort)
		log.Printf("Metrics available on http://%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received %v, shutting down", sig)
	if err := srv.Stop(); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Printf("Shutdown complete")
}
