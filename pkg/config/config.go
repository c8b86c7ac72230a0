package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DebugAddr returns host:port for the debug listener.
func (c *Config) DebugAddr() string {
	addr := c.Debug.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Debug.Port
	if p == 0 {
		p = 8089
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Load reads and parses the YAML config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (dbPath string, tablePath string, cfgPath string, debugAddr string, setFlags map[string]bool) {
	dbPtr := flag.String("db", "./.chatsim", "Pebble DB path")
	tblPtr := flag.String("responses", "./responses.yaml", "Path to responder table file")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	addrPtr := flag.String("debug-addr", "127.0.0.1:8089", "Debug listener address")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *dbPtr, *tblPtr, *cfgPtr, *addrPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	if v := os.Getenv("CHATSIM_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CHATSIM_RESPONSES"); v != "" {
		envUsed = true
		cfg.Responder.TablePath = v
	}
	if v := os.Getenv("CHATSIM_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHATSIM_DEBUG_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Debug.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Debug.Port = pi
			}
			cfg.Debug.Enabled = true
		}
	}
	if v := os.Getenv("CHATSIM_RETENTION_CRON"); v != "" {
		envUsed = true
		cfg.Retention.Enabled = true
		cfg.Retention.Cron = v
	}
	return envUsed
}

// LoadEffective loads the config file (if present), applies env overrides
// and reports which sources contributed.
func LoadEffective(path string) (*Config, string, error) {
	var cfg *Config
	sources := []string{}
	if c, err := Load(path); err == nil {
		cfg = c
		sources = append(sources, "file")
	} else if !strings.Contains(err.Error(), "not found") {
		return nil, "", err
	} else {
		cfg = &Config{}
	}
	if LoadEnvOverrides(cfg) {
		sources = append(sources, "env")
	}
	if len(sources) == 0 {
		sources = append(sources, "defaults")
	}
	return cfg, strings.Join(sources, ","), nil
}

// ResolveConfigPath decides the config path: an explicit flag wins, then
// CHATSIM_CONFIG, then the flag default.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if v := os.Getenv("CHATSIM_CONFIG"); v != "" {
		return v
	}
	return flagPath
}
