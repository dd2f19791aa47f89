package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/baditaflorin/go_txn_normalizer/internal/adapters/logger"
	"github.com/baditaflorin/go_txn_normalizer/internal/config"
	"github.com/baditaflorin/go_txn_normalizer/pkg/normalizer"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// DefaultConcurrency of 0 means use GOMAXPROCS
const DefaultConcurrency = 0

func main() {
	// Environment (and .env) first, flags override
	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", env.Port, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", env.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", env.WriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", env.MaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", env.WarmUp, "Perform system warm-up on startup")
	logFile := flag.String("log-file", env.LogFile, "Log file path (empty = stdout)")
	logJSON := flag.Bool("log-json", env.LogJSON, "Write JSON log records")
	patternFile := flag.String("patterns", env.PatternFile, "YAML pattern table (empty = built-in table)")
	stages := flag.String("stages", env.Stages, "Comma separated stage list (empty = canonical order)")
	workers := flag.Int("workers", env.Workers, "Batch workers (0 = number of CPUs)")
	flag.Parse()

	lg, err := createLogger(*logFile, *logJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()

	lg.Info("Starting normalizer HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	table := normalizer.DefaultTable()
	if *patternFile != "" {
		table, err = normalizer.LoadPatternFile(*patternFile)
		if err != nil {
			lg.Error("Failed to load pattern file", "path", *patternFile, "error", err)
			os.Exit(1)
		}
	}

	ids, err := normalizer.ParseStages(*stages)
	if err != nil {
		lg.Error("Invalid stage list", "stages", *stages, "error", err)
		os.Exit(1)
	}

	n, err := normalizer.New(
		normalizer.WithPatternTable(table),
		normalizer.WithStages(ids...),
		normalizer.WithWorkers(*workers),
		normalizer.WithLogger(lg),
		normalizer.WithWarmUp(*warmUp),
	)
	if err != nil {
		lg.Error("Failed to initialize normalizer", "error", err)
		os.Exit(1)
	}
	lg.Info("Normalizer initialized",
		"warm_up", *warmUp,
		"stages", len(ids),
		"cpus", runtime.NumCPU(),
	)

	srv := NewServer(n, table, logger.FromExisting(lg))

	server := &fasthttp.Server{
		Handler:               srv.HandleRequest,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lg.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			lg.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	addr := ":" + strconv.Itoa(*port)
	lg.Info("Server listening", "address", addr)
	if err := server.ListenAndServe(addr); err != nil {
		lg.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-idleConnsClosed
	lg.Info("Server stopped")
}

// createLogger creates and configures a logger
func createLogger(logFile string, jsonFormat bool) (l.Logger, error) {
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	cfg := logger.DefaultConfig(output)
	cfg.JsonFormat = jsonFormat
	cfg.MaxFileSize = 100 * 1024 * 1024 // 100MB

	lg, err := l.NewStandardFactory().CreateLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return lg, nil
}
