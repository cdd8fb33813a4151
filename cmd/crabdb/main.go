/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package main is the entry point for the CrabDB server.

Startup Flow:
=============

 1. Resolve configuration: defaults, config file, environment, flags
 2. Configure logging
 3. Build the store: a ShardedMap wrapped by the AppendOnlyLog,
    replaying existing log files unless recovery is disabled
 4. Start the TCP server (and the mDNS announcement when enabled)
 5. Wait for SIGINT/SIGTERM, then stop the server and close the log

Usage Examples:
===============

  Start with defaults (port 7227, data under the user data dir):
    crabdb

  Start with explicit sharding and a custom directory:
    crabdb -data-dir ./data -log-files 4 -buckets 16

  Start without replaying existing log files:
    crabdb -no-recover

  Encrypt log entries at rest:
    CRABDB_ENCRYPTION_PASSPHRASE=secret crabdb
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crabdb/internal/banner"
	"crabdb/internal/config"
	"crabdb/internal/discovery"
	"crabdb/internal/logging"
	"crabdb/internal/metrics"
	"crabdb/internal/server"
	"crabdb/internal/storage"
)

// printUsage prints the server's help text.
func printUsage() {
	fmt.Printf("CrabDB Server v%s - durable key-object store\n", banner.Version)
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  crabdb [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -port <port>         TCP port for client connections (default: 7227)")
	fmt.Printf("  -data-dir <path>     Directory for the log files (default: %s)\n", config.GetDefaultDataDir())
	fmt.Println("  -log-files <n>       Number of append-only log files (default: 2)")
	fmt.Println("  -buckets <n>         Number of in-memory map buckets (default: 4)")
	fmt.Println("  -workers <n>         Connection worker pool size (default: 4)")
	fmt.Println("  -no-recover          Do not replay existing log files at startup")
	fmt.Println("  -mdns                Announce the server on the local network")
	fmt.Println("  -log-level <level>   Log level: debug, info, warn, error (default: info)")
	fmt.Println("  -log-json            Enable JSON log output")
	fmt.Println("  -config <path>       Path to configuration file")
	fmt.Println("  -version             Show version information")
	fmt.Println("  -help                Show this help message")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  CRABDB_PORT, CRABDB_DATA_DIR, CRABDB_LOG_FILES, CRABDB_BUCKETS,")
	fmt.Println("  CRABDB_RECOVER, CRABDB_WORKERS, CRABDB_LOG_LEVEL, CRABDB_LOG_JSON,")
	fmt.Println("  CRABDB_MDNS, CRABDB_ENCRYPTION_PASSPHRASE, CRABDB_CONFIG_FILE")
	fmt.Println()
	fmt.Println("CONNECTING:")
	fmt.Println("  crab-cli -addr localhost:7227")
	fmt.Println()
}

func main() {
	// Config file and environment first; flags overlay them below.
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := cfgMgr.Get()

	port := flag.Int("port", cfg.Port, "TCP port for client connections")
	dataDir := flag.String("data-dir", cfg.DataDir, "Directory for the log files")
	logFiles := flag.Int("log-files", cfg.LogFiles, "Number of append-only log files")
	buckets := flag.Int("buckets", cfg.Buckets, "Number of in-memory map buckets")
	workers := flag.Int("workers", cfg.Workers, "Connection worker pool size")
	noRecover := flag.Bool("no-recover", !cfg.Recover, "Do not replay existing log files at startup")
	mdnsFlag := flag.Bool("mdns", cfg.MDNS, "Announce the server on the local network")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", cfg.LogJSON, "Enable JSON log output")
	configFile := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("crabdb version %s\n", banner.Version)
		os.Exit(0)
	}

	// An explicit config file reloads everything; environment still wins
	// over the file, and flags win over both.
	if *configFile != "" {
		if err := cfgMgr.LoadFromFile(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
			os.Exit(1)
		}
		cfgMgr.LoadFromEnv()
		cfg = cfgMgr.Get()
	}

	// Only flags the user actually set override the resolved config.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "data-dir":
			cfg.DataDir = *dataDir
		case "log-files":
			cfg.LogFiles = *logFiles
		case "buckets":
			cfg.Buckets = *buckets
		case "workers":
			cfg.Workers = *workers
		case "no-recover":
			cfg.Recover = !*noRecover
		case "mdns":
			cfg.MDNS = *mdnsFlag
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-json":
			cfg.LogJSON = *logJSON
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	log := logging.NewLogger("main")

	banner.Print()

	// Build the store: ShardedMap inside, AppendOnlyLog outside.
	inner := storage.NewShardedMap(cfg.Buckets)
	opts := storage.LogOptions{Encryption: storage.EncryptionConfig{
		Enabled:    cfg.EncryptionPassphrase != "",
		Passphrase: cfg.EncryptionPassphrase,
	}}

	var store *storage.AppendOnlyLog
	var err error
	if cfg.Recover {
		store, err = storage.RecoverLogWithOptions(cfg.DataDir, cfg.LogFiles, inner, opts)
	} else {
		store, err = storage.OpenLogWithOptions(cfg.DataDir, cfg.LogFiles, inner, opts)
	}
	if err != nil {
		log.Error("Failed to open store", "data_dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("Store opened",
		"data_dir", cfg.DataDir,
		"log_files", cfg.LogFiles,
		"buckets", cfg.Buckets,
		"recovered_keys", inner.Len(),
		"encrypted", store.IsEncrypted())

	m := metrics.New()
	srv := server.New(fmt.Sprintf(":%d", cfg.Port), store, server.Options{
		Workers: cfg.Workers,
		Metrics: m,
	})
	if err := srv.Start(); err != nil {
		os.Exit(1)
	}

	var announcer *discovery.Announcer
	if cfg.MDNS {
		announcer, err = discovery.Announce(cfg.Port, banner.Version)
		if err != nil {
			log.Warn("mDNS announcement failed", "error", err)
		} else {
			log.Info("Announced on local network", "service", discovery.ServiceType)
		}
	}

	// Block until asked to shut down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Shutting down", "signal", sig.String())

	if announcer != nil {
		announcer.Stop()
	}
	srv.Stop()

	snap := m.Snapshot()
	log.Info("Final statistics",
		"uptime", snap.Uptime.Round(time.Second).String(),
		"sessions", snap.Sessions,
		"gets", snap.Gets,
		"sets", snap.Sets,
		"deletes", snap.Deletes,
		"errors", snap.Errors,
		"keys", inner.Len())
}
