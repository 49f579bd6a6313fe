// Package config loads meel.toml and the environment overrides that shape
// a check run or a language-server session.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"meel/internal/decor"
)

const (
	FileName = "meel.toml"

	DefaultLanguageID     = "meel"
	DefaultTemplateDir    = "./data/templates"
	DefaultTemplateExt    = ".meel"
	DefaultMaxDiagnostics = 100

	EnvTemplateDirectory = "MEEL_TEMPLATE_DIRECTORY"
	EnvLanguageID        = "MEEL_LANGUAGE_ID"
)

type Config struct {
	Language    LanguageConfig    `toml:"language"`
	Templates   TemplatesConfig   `toml:"templates"`
	Decorations DecorationsConfig `toml:"decorations"`
	Check       CheckConfig       `toml:"check"`

	// Path is the manifest the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type LanguageConfig struct {
	ID string `toml:"id"`
}

type TemplatesConfig struct {
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
}

type DecorationsConfig struct {
	MarkerColor      string `toml:"marker_color"`
	PlaceholderColor string `toml:"placeholder_color"`
}

type CheckConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
	Jobs           int `toml:"jobs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language:  LanguageConfig{ID: DefaultLanguageID},
		Templates: TemplatesConfig{Dir: DefaultTemplateDir, Extension: DefaultTemplateExt},
		Decorations: DecorationsConfig{
			MarkerColor:      decor.DefaultMarkerColor,
			PlaceholderColor: decor.DefaultPlaceholderColor,
		},
		Check: CheckConfig{MaxDiagnostics: DefaultMaxDiagnostics},
	}
}

// Find walks up from startDir looking for meel.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFile reads path on top of the defaults. Keys missing from the file
// keep their default values; relative template dirs resolve against the
// manifest's directory.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	if meta.IsDefined("language", "id") && strings.TrimSpace(cfg.Language.ID) == "" {
		return Config{}, fmt.Errorf("%s: [language].id must not be empty", path)
	}
	if meta.IsDefined("templates", "dir") && !filepath.IsAbs(cfg.Templates.Dir) {
		cfg.Templates.Dir = filepath.Join(filepath.Dir(path), filepath.FromSlash(cfg.Templates.Dir))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves the configuration for a run: explicit path if given,
// otherwise meel.toml found from startDir, otherwise defaults. Environment
// overrides are applied last.
func Load(explicitPath, startDir string) (Config, error) {
	var (
		cfg Config
		err error
	)
	switch {
	case explicitPath != "":
		cfg, err = LoadFile(explicitPath)
	default:
		var (
			path string
			ok   bool
		)
		path, ok, err = Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			cfg, err = LoadFile(path)
		} else {
			cfg = Default()
		}
	}
	if err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv applies MEEL_* overrides. An empty MEEL_TEMPLATE_DIRECTORY
// means the default directory.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTemplateDirectory); ok {
		if strings.TrimSpace(v) == "" {
			c.Templates.Dir = DefaultTemplateDir
		} else {
			c.Templates.Dir = v
		}
	}
	if v, ok := lookup(EnvLanguageID); ok && strings.TrimSpace(v) != "" {
		c.Language.ID = strings.TrimSpace(v)
	}
}

// Validate checks value ranges and colour formats.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Language.ID) == "" {
		return fmt.Errorf("language id must not be empty")
	}
	if !strings.HasPrefix(c.Templates.Extension, ".") || len(c.Templates.Extension) < 2 {
		return fmt.Errorf("[templates].extension must start with a dot, got %q", c.Templates.Extension)
	}
	if !decor.ValidColor(c.Decorations.MarkerColor) {
		return fmt.Errorf("[decorations].marker_color: invalid color %q (want #RRGGBB)", c.Decorations.MarkerColor)
	}
	if !decor.ValidColor(c.Decorations.PlaceholderColor) {
		return fmt.Errorf("[decorations].placeholder_color: invalid color %q (want #RRGGBB)", c.Decorations.PlaceholderColor)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must not be negative")
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must not be negative")
	}
	return nil
}

// TemplateStore returns the template lookup bound to this config.
func (c *Config) TemplateStore() Templates {
	return Templates{Dir: c.Templates.Dir, Extension: c.Templates.Extension}
}
