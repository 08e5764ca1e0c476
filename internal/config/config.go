// Package config loads the httpfetch configuration: built-in defaults, then an
// optional TOML file, then HTTPFETCH_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const EnvPrefix = "HTTPFETCH_"

const (
	FactorySimple = "simple"
	FactoryClient = "client"
)

type Retry struct {
	Max     int           `koanf:"max"`
	WaitMin time.Duration `koanf:"wait_min"`
	WaitMax time.Duration `koanf:"wait_max"`
}

type DNS struct {
	Server  string `koanf:"server"`
	Network string `koanf:"network"`
	// StaticHosts holds host=address pairs. Host names usually contain the
	// key delimiter, so they can't be keys themselves.
	StaticHosts []string `koanf:"static_hosts"`
}

// Hosts returns StaticHosts as a map.
func (d DNS) Hosts() (map[string]string, error) {
	if len(d.StaticHosts) == 0 {
		return nil, nil
	}
	hosts := make(map[string]string, len(d.StaticHosts))
	for _, pair := range d.StaticHosts {
		host, addr, ok := strings.Cut(pair, "=")
		host, addr = strings.TrimSpace(host), strings.TrimSpace(addr)
		if !ok || host == "" || addr == "" {
			return nil, errors.Errorf("invalid static host %q, want host=address", pair)
		}
		hosts[host] = addr
	}
	return hosts, nil
}

type Config struct {
	Factory     string        `koanf:"factory"`
	Timeout     time.Duration `koanf:"timeout"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	Proxy       string        `koanf:"proxy"`
	Insecure    bool          `koanf:"insecure"`
	HTTP2       bool          `koanf:"http2"`
	Accept      string        `koanf:"accept"`
	LogLevel    string        `koanf:"log_level"`

	Retry Retry `koanf:"retry"`
	DNS   DNS   `koanf:"dns"`
}

func Default() Config {
	return Config{
		Factory:  FactorySimple,
		Timeout:  30 * time.Second,
		HTTP2:    true,
		Accept:   "*/*",
		LogLevel: "warn",
		Retry: Retry{
			WaitMin: time.Second,
			WaitMax: 30 * time.Second,
		},
	}
}

// Load reads the configuration. path may be empty, in which case only the
// defaults and the environment are consulted.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	var cfg Config

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return cfg, errors.Wrap(err, "load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return cfg, errors.Wrapf(err, "load %s", path)
		}
	}

	// HTTPFETCH_RETRY__MAX sets retry.max
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return cfg, errors.Wrap(err, "load environment")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, errors.Wrap(err, "unmarshal config")
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Factory != FactorySimple && c.Factory != FactoryClient {
		return errors.Errorf("unknown factory %q, want %q or %q", c.Factory, FactorySimple, FactoryClient)
	}
	if c.Retry.Max < 0 {
		return errors.New("retry.max must not be negative")
	}
	if c.Timeout < 0 || c.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	_, err := c.DNS.Hosts()
	return err
}
