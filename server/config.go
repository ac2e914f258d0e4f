// Package server exposes a Ledger over a small JSON HTTP API,
// together with the Prometheus metrics endpoint.
package server

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/x/revenue"
	"github.com/petrodao/govledger/x/vote"
)

// Config is read from an optional YAML file and then overlaid with
// GOVLEDGER_* environment variables.
type Config struct {
	ListenAddress   string   `yaml:"listenAddress"   split_words:"true"`
	DataDir         string   `yaml:"dataDir"         split_words:"true"`
	InMemory        bool     `yaml:"inMemory"        split_words:"true"`
	LogLevel        string   `yaml:"logLevel"        split_words:"true"`
	TickGranularity string   `yaml:"tickGranularity" split_words:"true"`
	MaxSupply       int64    `yaml:"maxSupply"       split_words:"true"`
	LockPeriod      int64    `yaml:"lockPeriod"      split_words:"true"`
	Currencies      []string `yaml:"currencies"`
	AuditRelease    bool     `yaml:"auditRelease"    split_words:"true"`
	Threshold       int64    `yaml:"threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddress:   "localhost:8845",
		DataDir:         ".govledger",
		LogLevel:        "info",
		TickGranularity: "1m",
	}
}

// LoadConfig merges defaults, the YAML file (when given) and the
// environment, in that order. Zero values for the revenue and vote
// parameters mean "use the built-in defaults".
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	if err := envconfig.Process("govledger", cfg); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}
	return cfg, nil
}

// RevenueConfiguration builds the revenue parameters, keeping the
// built-in defaults for anything left unset.
func (c *Config) RevenueConfiguration() *revenue.Configuration {
	conf := revenue.DefaultConfiguration()
	if c.MaxSupply > 0 {
		conf.MaxSupply = c.MaxSupply
	}
	if c.LockPeriod > 0 {
		conf.LockPeriod = govledger.Tick(c.LockPeriod)
	}
	if len(c.Currencies) > 0 {
		conf.Currencies = c.Currencies
	}
	conf.AuditRelease = c.AuditRelease
	return &conf
}

// VoteConfiguration builds the voting parameters.
func (c *Config) VoteConfiguration() *vote.Configuration {
	conf := vote.DefaultConfiguration()
	if c.Threshold > 0 {
		conf.ThresholdPercent = c.Threshold
	}
	return &conf
}
