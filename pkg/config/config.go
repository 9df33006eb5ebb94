// Package config loads the gobuilder command line configuration.
//
// The file format follows the extension: ".yaml" and ".yml" are read as
// YAML, anything else as TOML.
//
//	log_level = "debug"
//	max_depth = 128
//	timeout = "5s"
//	wasm_modules = ["$HOME/wasm/math.wasm"]
//	string_escapes = true
//
//	[[wasm]]
//	path = "./color.wasm"
//	prefix = "Color."
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gobuilder/pkg/cache"
	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/printer"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "GOBUILDER_CONFIG"

// Config holds the command line configuration.
type Config struct {
	LogLevel      string       `toml:"log_level" yaml:"log_level"`
	MaxDepth      int          `toml:"max_depth" yaml:"max_depth"`
	MaxCallDepth  int          `toml:"max_call_depth" yaml:"max_call_depth"`
	CacheSize     int          `toml:"cache_size" yaml:"cache_size"`
	Timeout       Duration     `toml:"timeout" yaml:"timeout"`
	IgnoreUnknown bool         `toml:"ignore_unknown" yaml:"ignore_unknown"`
	Entry         string       `toml:"entry" yaml:"entry"`
	WasmModules   []string     `toml:"wasm_modules" yaml:"wasm_modules"`
	Wasm          []WasmModule `toml:"wasm" yaml:"wasm"`
	Color         *bool        `toml:"color" yaml:"color"`
	History       string       `toml:"history" yaml:"history"`
	StringEscapes bool         `toml:"string_escapes" yaml:"string_escapes"`
	Fractions     bool         `toml:"fractions" yaml:"fractions"`
}

// WasmModule configures one WebAssembly module with an optional name prefix.
type WasmModule struct {
	Path   string `toml:"path" yaml:"path"`
	Prefix string `toml:"prefix" yaml:"prefix"`
}

// Duration wraps time.Duration for TOML and YAML parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(content, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the file named by GOBUILDER_CONFIG or the first of
// ./gobuilder.toml, ./gobuilder.yaml and ~/.config/gobuilder/config.toml
// that exists. Without any file it returns Default().
func LoadDefault() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}

	home, _ := os.UserHomeDir()
	candidates := []string{
		"./gobuilder.toml",
		"./gobuilder.yaml",
		"./gobuilder.yml",
		filepath.Join(home, ".config", "gobuilder", "config.toml"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// Format identifies a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// DetectFormat determines the configuration format from file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes content, applies defaults and expands environment
// variables in module paths. Unknown keys are rejected.
func Parse(content []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		md, err := toml.Decode(string(content), &cfg)
		if err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown configuration key %q", undecoded[0].String())
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = parser.DefaultMaxDepth
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = evaluator.DefaultMaxDepth
	}
	if c.CacheSize == 0 {
		c.CacheSize = cache.DefaultCapacity
	}
	if c.Timeout.Duration == 0 {
		c.Timeout.Duration = evaluator.DefaultTimeout
	}
	if c.History == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.History = filepath.Join(home, ".gobuilder_history")
		}
	}
}

// expandEnvVars expands environment variables in file paths.
func (c *Config) expandEnvVars() {
	for i, p := range c.WasmModules {
		c.WasmModules[i] = os.ExpandEnv(p)
	}
	for i := range c.Wasm {
		c.Wasm[i].Path = os.ExpandEnv(c.Wasm[i].Path)
	}
	c.History = os.ExpandEnv(c.History)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxDepth < 0 || c.MaxCallDepth < 0 || c.CacheSize < 0 {
		return fmt.Errorf("max_depth, max_call_depth and cache_size must not be negative")
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	for _, m := range c.Wasm {
		if m.Path == "" {
			return fmt.Errorf("wasm module without path")
		}
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// Modules returns every configured WebAssembly module: the bare paths of
// wasm_modules first, then the [[wasm]] entries.
func (c *Config) Modules() []WasmModule {
	out := make([]WasmModule, 0, len(c.WasmModules)+len(c.Wasm))
	for _, p := range c.WasmModules {
		out = append(out, WasmModule{Path: p})
	}
	return append(out, c.Wasm...)
}

// ColorEnabled reports whether diagnostics should be colored. Without an
// explicit setting, color is used unless NO_COLOR is set.
func (c *Config) ColorEnabled() bool {
	if c.Color != nil {
		return *c.Color
	}
	return os.Getenv("NO_COLOR") == ""
}

// CompileOptions returns the parser options for this configuration.
func (c *Config) CompileOptions() []parser.CompileOption {
	return []parser.CompileOption{
		parser.WithMaxDepth(c.MaxDepth),
		parser.WithStringEscapes(c.StringEscapes),
		parser.WithFractions(c.Fractions),
	}
}

// PrinterOptions returns the formatter options matching CompileOptions.
func (c *Config) PrinterOptions() []printer.Option {
	if c.StringEscapes {
		return []printer.Option{printer.WithEscapes()}
	}
	return nil
}

// EvalOptions returns the evaluator options for this configuration.
func (c *Config) EvalOptions() []evaluator.EvalOption {
	return []evaluator.EvalOption{
		evaluator.WithMaxDepth(c.MaxCallDepth),
		evaluator.WithTimeout(c.Timeout.Duration),
		evaluator.WithIgnoreUnknown(c.IgnoreUnknown),
		evaluator.WithCaching(true),
		evaluator.WithCacheSize(c.CacheSize),
		evaluator.WithCompileOptions(c.CompileOptions()...),
	}
}
