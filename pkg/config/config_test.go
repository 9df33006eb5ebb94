package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sandrolain/gobuilder/pkg/cache"
	"github.com/sandrolain/gobuilder/pkg/config"
	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	t.Setenv("WASM_DIR", "/opt/wasm")
	path := writeFile(t, "gobuilder.toml", `
log_level = "debug"
max_depth = 64
timeout = "5s"
ignore_unknown = true
entry = "page"
color = false
wasm_modules = ["$WASM_DIR/math.wasm"]

[[wasm]]
path = "./color.wasm"
prefix = "Color."
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.MaxDepth != 64 || !cfg.IgnoreUnknown || cfg.Entry != "page" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout.Duration != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout.Duration)
	}
	if cfg.ColorEnabled() {
		t.Error("color was disabled explicitly")
	}

	want := []config.WasmModule{
		{Path: "/opt/wasm/math.wasm"},
		{Path: "./color.wasm", Prefix: "Color."},
	}
	if got := cfg.Modules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Modules() = %+v, want %+v", got, want)
	}

	level, err := cfg.Level()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", level, err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "gobuilder.yml", `
log_level: error
cache_size: 8
timeout: 250ms
wasm:
  - path: ./a.wasm
    prefix: A.
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "error" || cfg.CacheSize != 8 || cfg.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("unexpected config %+v", cfg)
	}
	if len(cfg.Wasm) != 1 || cfg.Wasm[0].Prefix != "A." {
		t.Errorf("unexpected wasm modules %+v", cfg.Wasm)
	}
}

func TestDefaults(t *testing.T) {
	for _, cfg := range []*config.Config{config.Default(), mustParse(t, "", config.FormatTOML), mustParse(t, "", config.FormatYAML)} {
		if cfg.LogLevel != "warn" {
			t.Errorf("LogLevel = %q", cfg.LogLevel)
		}
		if cfg.MaxDepth != parser.DefaultMaxDepth || cfg.MaxCallDepth != evaluator.DefaultMaxDepth {
			t.Errorf("unexpected depth limits %+v", cfg)
		}
		if cfg.CacheSize != cache.DefaultCapacity || cfg.Timeout.Duration != evaluator.DefaultTimeout {
			t.Errorf("unexpected cache or timeout %+v", cfg)
		}
		if len(cfg.EvalOptions()) == 0 || len(cfg.CompileOptions()) != 3 {
			t.Error("expected evaluator and parser options")
		}
	}
}

func mustParse(t *testing.T, content string, format config.Format) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(content), format)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return cfg
}

func TestLexerSettings(t *testing.T) {
	cfg := mustParse(t, "string_escapes: true\nfractions: true\n", config.FormatYAML)
	if !cfg.StringEscapes || !cfg.Fractions {
		t.Fatalf("unexpected config %+v", cfg)
	}
	prog, err := parser.Compile(`fun f() { a("x\"y" 1.5) }`, cfg.CompileOptions()...)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	call := prog.Functions()[0].Body[0].(*types.Call)
	if len(call.Parameters) != 2 {
		t.Errorf("expected one string and one number, got %+v", call.Parameters)
	}
	if len(cfg.PrinterOptions()) != 1 || len(config.Default().PrinterOptions()) != 0 {
		t.Error("printer escapes should follow string_escapes")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  config.Format
		msg     string
	}{
		{"bad toml", `log_level = `, config.FormatTOML, "TOML parse error"},
		{"bad yaml", "log_level: [", config.FormatYAML, "YAML parse error"},
		{"unknown toml key", `colour = true`, config.FormatTOML, "unknown configuration key"},
		{"unknown yaml key", "colour: true", config.FormatYAML, "YAML parse error"},
		{"bad level", `log_level = "loud"`, config.FormatTOML, "invalid log_level"},
		{"bad duration", `timeout = "soon"`, config.FormatTOML, "TOML parse error"},
		{"negative timeout", `timeout = "-1s"`, config.FormatTOML, "must not be negative"},
		{"negative depth", `max_depth = -1`, config.FormatTOML, "must not be negative"},
		{"wasm without path", "[[wasm]]\nprefix = \"X.\"", config.FormatTOML, "without path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content), tt.format)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected error containing %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadDefaultFromEnv(t *testing.T) {
	path := writeFile(t, "custom.yaml", "entry: main\n")
	t.Setenv(config.EnvVar, path)
	cfg, err := config.LoadDefault()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Entry != "main" {
		t.Errorf("Entry = %q", cfg.Entry)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]config.Format{
		"a.toml": config.FormatTOML,
		"a.yaml": config.FormatYAML,
		"a.YML":  config.FormatYAML,
		"a.conf": config.FormatTOML,
		"noext":  config.FormatTOML,
	}
	for path, want := range tests {
		if got := config.DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestColorFollowsNoColor(t *testing.T) {
	cfg := config.Default()
	t.Setenv("NO_COLOR", "1")
	if cfg.ColorEnabled() {
		t.Error("NO_COLOR should disable color")
	}
	on := true
	cfg.Color = &on
	if !cfg.ColorEnabled() {
		t.Error("explicit setting should win")
	}
}
