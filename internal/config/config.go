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
Package config holds CrabDB's configuration.

Values are resolved in precedence order:

 1. Command-line flags (applied by the caller, highest)
 2. Environment variables (CRABDB_*)
 3. Configuration file (key = value lines)
 4. Built-in defaults

The configuration file is searched at /etc/crabdb/crabdb.conf,
$HOME/.config/crabdb/crabdb.conf, then ./crabdb.conf; the first one found
wins. A missing file is not an error.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Environment variable names.
const (
	EnvPort                 = "CRABDB_PORT"
	EnvDataDir              = "CRABDB_DATA_DIR"
	EnvLogFiles             = "CRABDB_LOG_FILES"
	EnvBuckets              = "CRABDB_BUCKETS"
	EnvRecover              = "CRABDB_RECOVER"
	EnvWorkers              = "CRABDB_WORKERS"
	EnvLogLevel             = "CRABDB_LOG_LEVEL"
	EnvLogJSON              = "CRABDB_LOG_JSON"
	EnvMDNS                 = "CRABDB_MDNS"
	EnvEncryptionPassphrase = "CRABDB_ENCRYPTION_PASSPHRASE"
	EnvConfigFile           = "CRABDB_CONFIG_FILE"
)

// DefaultConfigPaths are searched in order for a configuration file.
var DefaultConfigPaths = []string{
	"/etc/crabdb/crabdb.conf",
	"$HOME/.config/crabdb/crabdb.conf",
	"./crabdb.conf",
}

// GetDefaultDataDir returns the default directory for the log files.
// Root gets /var/lib/crabdb (Filesystem Hierarchy Standard); other users
// get the XDG data directory.
func GetDefaultDataDir() string {
	if os.Getuid() == 0 {
		return "/var/lib/crabdb"
	}
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "crabdb")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "crabdb")
	}
	return "./data"
}

// Config holds all CrabDB settings.
type Config struct {
	// Port is the TCP port for the binary protocol.
	Port int

	// DataDir is the directory holding the append-only log files.
	DataDir string

	// LogFiles is the number of append-only log files (write shards).
	LogFiles int

	// Buckets is the number of in-memory map buckets.
	Buckets int

	// Recover replays the log files at startup. Disabling it opens the
	// store empty while keeping the existing files intact.
	Recover bool

	// Workers is the size of the connection worker pool.
	Workers int

	// Logging.
	LogLevel string
	LogJSON  bool

	// MDNS announces the server on the local network.
	MDNS bool

	// EncryptionPassphrase seals log entries at rest when non-empty.
	// Never persisted to a config file.
	EncryptionPassphrase string

	// ConfigFile is the path of the loaded file, if any.
	ConfigFile string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:     7227,
		DataDir:  GetDefaultDataDir(),
		LogFiles: 2,
		Buckets:  4,
		Recover:  true,
		Workers:  4,
		LogLevel: "info",
		LogJSON:  false,
		MDNS:     false,
	}
}

// Validate checks the configuration, collecting every problem found.
func (c *Config) Validate() error {
	var errs []string
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d (must be 1-65535)", c.Port))
	}
	if c.LogFiles < 1 {
		errs = append(errs, fmt.Sprintf("invalid log_files: %d (must be at least 1)", c.LogFiles))
	}
	if c.Buckets < 1 {
		errs = append(errs, fmt.Sprintf("invalid buckets: %d (must be at least 1)", c.Buckets))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("invalid workers: %d (must be at least 1)", c.Workers))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}
	if c.DataDir == "" {
		errs = append(errs, "data_dir cannot be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Manager loads and hands out the configuration.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a Manager holding the defaults.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set replaces the current configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// Load resolves the configuration from the default file locations and the
// environment. A missing config file is not an error; a file that exists
// but does not parse is.
func (m *Manager) Load() error {
	if path := FindConfigFile(); path != "" {
		if err := m.LoadFromFile(path); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	return nil
}

// FindConfigFile returns the first existing config file from
// CRABDB_CONFIG_FILE and the default search paths, or "".
func FindConfigFile() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		expanded := os.ExpandEnv(path)
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}
	return ""
}

// LoadFromFile loads settings from a `key = value` file. Blank lines and
// lines starting with # are ignored; unknown keys are an error so that a
// typo does not silently fall back to a default.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.config
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("config file %s line %d: missing '='", path, i+1)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := applySetting(&cfg, key, value); err != nil {
			return fmt.Errorf("config file %s line %d: %w", path, i+1, err)
		}
	}
	cfg.ConfigFile = path
	m.config = &cfg
	return nil
}

// applySetting assigns one config-file key.
func applySetting(cfg *Config, key, value string) error {
	switch key {
	case "port":
		return parseInt(value, &cfg.Port)
	case "data_dir":
		cfg.DataDir = value
	case "log_files":
		return parseInt(value, &cfg.LogFiles)
	case "buckets":
		return parseInt(value, &cfg.Buckets)
	case "recover":
		return parseBool(value, &cfg.Recover)
	case "workers":
		return parseInt(value, &cfg.Workers)
	case "log_level":
		cfg.LogLevel = value
	case "log_json":
		return parseBool(value, &cfg.LogJSON)
	case "mdns":
		return parseBool(value, &cfg.MDNS)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// LoadFromEnv overlays CRABDB_* environment variables onto the current
// configuration. Unparsable values are ignored rather than fatal, matching
// the behavior of absent variables.
func (m *Manager) LoadFromEnv() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.config

	if v := os.Getenv(EnvPort); v != "" {
		parseInt(v, &cfg.Port)
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLogFiles); v != "" {
		parseInt(v, &cfg.LogFiles)
	}
	if v := os.Getenv(EnvBuckets); v != "" {
		parseInt(v, &cfg.Buckets)
	}
	if v := os.Getenv(EnvRecover); v != "" {
		parseBool(v, &cfg.Recover)
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		parseInt(v, &cfg.Workers)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		parseBool(v, &cfg.LogJSON)
	}
	if v := os.Getenv(EnvMDNS); v != "" {
		parseBool(v, &cfg.MDNS)
	}
	if v := os.Getenv(EnvEncryptionPassphrase); v != "" {
		cfg.EncryptionPassphrase = v
	}

	m.config = &cfg
}

func parseInt(value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("not an integer: %q", value)
	}
	*dst = n
	return nil
}

func parseBool(value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("not a boolean: %q", value)
	}
	*dst = b
	return nil
}
