package ctp

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Viatorus/compile-time-printer/encio"
	"github.com/Viatorus/compile-time-printer/encode"
	"github.com/Viatorus/compile-time-printer/formatter"
)

// Environment variables read by LoadConfig and Default.
const (
	EnvConfig    = "CTP_CONFIG"
	EnvQuiet     = "CTP_QUIET"
	EnvDeadQuiet = "CTP_DEAD_QUIET"
)

// Config defines configuration for Printers.
type Config struct {
	// Quiet suppresses frames. Calls still resolve their arguments and return their result.
	Quiet bool `yaml:"quiet"`

	// DeadQuiet implies Quiet, and additionally suppresses the Version handshake.
	DeadQuiet bool `yaml:"dead_quiet"`

	// MaxDepth limits bracket nesting and pointer indirection within a frame.
	// Zero means encode.DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth"`

	// Output is the file Default writes its binary stream to.
	// If empty, Default writes text tokens to os.Stderr.
	Output string `yaml:"output"`

	// Checksum and Compress configure the binary stream written to Output.
	Checksum bool `yaml:"checksum"`
	Compress bool `yaml:"compress"`

	// Registry holds the formatters of user types.
	// If nil, DefaultRegistry is used.
	Registry *formatter.Registry `yaml:"-"`

	// Source resolves types to Encodables.
	// If nil, a caching Source over Registry is created for each Printer.
	Source encode.Source `yaml:"-"`
}

func (c *Config) copyAndFill() *Config {
	config := new(Config)
	if c != nil {
		*config = *c
	}

	if config.DeadQuiet {
		config.Quiet = true
	}

	if config.MaxDepth <= 0 {
		config.MaxDepth = encode.DefaultMaxDepth
	}

	if config.Registry == nil {
		config.Registry = DefaultRegistry
	}

	if config.Source == nil {
		config.Source = encode.New(config.Registry)
	}

	return config
}

// LoadConfig reads the YAML configuration file at path and applies environment overrides.
// An empty path reads no file.
func LoadConfig(path string) (*Config, error) {
	config := new(Config)

	if path != "" {
		buff, err := os.ReadFile(path)
		if err != nil {
			return nil, encio.NewError(encio.ErrBadConfig, err.Error(), 0)
		}
		if err := yaml.Unmarshal(buff, config); err != nil {
			return nil, encio.NewError(encio.ErrBadConfig, fmt.Sprintf("%v: %v", path, err), 0)
		}
	}

	if err := envBool(EnvQuiet, &config.Quiet); err != nil {
		return nil, err
	}
	if err := envBool(EnvDeadQuiet, &config.DeadQuiet); err != nil {
		return nil, err
	}

	return config, nil
}

func envBool(name string, dst *bool) error {
	val, ok := os.LookupEnv(name)
	if !ok || val == "" {
		return nil
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return encio.NewError(encio.ErrBadConfig, fmt.Sprintf("%v=%q is not a boolean", name, val), 1)
	}
	*dst = b
	return nil
}
