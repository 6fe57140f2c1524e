// Package config loads refcell tool configuration from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/refc"
)

// Config holds configuration for the refcell tools.
type Config struct {
	Log     LogConfig    `yaml:"log"`
	Handles HandleConfig `yaml:"handles"`
	Wasm    WasmConfig   `yaml:"wasm"`
}

// LogConfig selects the zap logger built by NewLogger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is console or json.
	Format string `yaml:"format"`
}

// HandleConfig sets defaults for handles created by the tools.
type HandleConfig struct {
	// LeakCheck reports handles garbage collected without Release.
	LeakCheck bool `yaml:"leak_check"`
}

// WasmConfig configures wazero runtimes created by the tools.
type WasmConfig struct {
	// Interpreter forces the interpreter instead of the compiler.
	Interpreter bool `yaml:"interpreter"`

	// MemoryLimitPages caps memory per instance in 64KB pages. 0 means default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound,
			pkgerrors.Wrapf(err, "read config %s", path), "cannot read configuration")
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.ParseFailed(errors.PhaseConfig, "configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Name("log.level").
			Value(c.Log.Level).
			Detail("unknown log level %q", c.Log.Level).
			Build()
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Name("log.format").
			Value(c.Log.Format).
			Detail("unknown log format %q", c.Log.Format).
			Build()
	}
	return nil
}

// NewLogger builds a zap logger at the configured level and format.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseConfig, err.Error())
	}

	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "cannot build logger")
	}
	return l, nil
}

// HandleOptions returns the refc options implied by the configuration.
func (c *Config) HandleOptions() []refc.Option {
	var opts []refc.Option
	if c.Handles.LeakCheck {
		opts = append(opts, refc.WithLeakCheck())
	}
	return opts
}
