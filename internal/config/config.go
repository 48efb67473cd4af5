package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tender-radar/tenderscrape/internal/creds"
)

// Config holds application configuration values.
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`
	// LogFile enables a rotating file sink alongside the console when set.
	LogFile string `yaml:"log_file"`

	// Filesystem / store
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`

	// Browser
	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`
	UserAgent  string `yaml:"user_agent"`

	// Scheduling
	ScrapeTimeout time.Duration `yaml:"scrape_timeout"`
	// Stagger is the pause between scraper startups in run --all, purely to
	// avoid a local thundering herd.
	Stagger time.Duration `yaml:"stagger"`

	// Credentials from the config file, keyed by scraper id. Lowest-priority
	// layer of the credential chain.
	Credentials map[string]creds.Credentials `yaml:"credentials"`
}

// Load builds a Config by combining defaults, an optional YAML config file,
// environment variables, and CLI flags, in increasing priority. Caller
// passes the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		DataDir:       DefaultDataDir,
		DBPath:        DefaultDBPath,
		Headless:      DefaultHeadless,
		UserAgent:     DefaultUserAgent,
		ScrapeTimeout: DefaultScrapeTimeout,
		Stagger:       DefaultStagger,
	}

	if path := configFilePath(cmd); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	if v := os.Getenv("TENDERSCRAPE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TENDERSCRAPE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TENDERSCRAPE_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("TENDERSCRAPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}

	// Flag overrides
	if cmd != nil {
		flags := cmd.Flags()
		if f := flags.Lookup("data-dir"); f != nil && f.Changed {
			cfg.DataDir = f.Value.String()
		}
		if f := flags.Lookup("db"); f != nil && f.Changed {
			cfg.DBPath = f.Value.String()
		}
		if f := flags.Lookup("headless"); f != nil && f.Changed {
			cfg.Headless = f.Value.String() == "true"
		}
		if f := flags.Lookup("timeout"); f != nil && f.Changed {
			if d, err := time.ParseDuration(f.Value.String()); err == nil {
				cfg.ScrapeTimeout = d
			}
		}
		if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
		if f := flags.Lookup("log-file"); f != nil && f.Changed {
			cfg.LogFile = f.Value.String()
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func configFilePath(cmd *cobra.Command) string {
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	if v := os.Getenv("TENDERSCRAPE_CONFIG"); v != "" {
		return v
	}
	// Conventional location, used only when present.
	if _, err := os.Stat("tenderscrape.yaml"); err == nil {
		return "tenderscrape.yaml"
	}
	return ""
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
