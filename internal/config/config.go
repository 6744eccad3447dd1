// Package config loads the optional .mdslides.yaml settings file.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"mdslides/internal/anim"
	"mdslides/internal/charset"
	"mdslides/internal/shell"
	"mdslides/internal/slide"
	"mdslides/internal/theme"
)

// FileName is the settings file looked up in the working directory.
const FileName = ".mdslides.yaml"

// Config is the settings file content.
type Config struct {
	Theme      string                   `yaml:"theme"`
	Animations *bool                    `yaml:"animations"`
	Themes     map[string]theme.Palette `yaml:"themes"`
	Animation  Animation                `yaml:"animation"`
	Shell      Shell                    `yaml:"shell"`
	Fallback   []charset.Replacement    `yaml:"fallback"`
}

// Animation holds animation speeds, e.g. "30ms".
type Animation struct {
	Typewriter time.Duration `yaml:"typewriter"`
	FadeStep   time.Duration `yaml:"fade_step"`
	SlideStep  time.Duration `yaml:"slide_step"`
	SlideCols  int           `yaml:"slide_cols"`
	SlideLead  *int          `yaml:"slide_lead"` // nil means the default, 0 starts at the text
	RowDelay   time.Duration `yaml:"row_delay"`
}

// Shell configures command execution.
type Shell struct {
	MaxVisibleLines int           `yaml:"max_visible_lines"`
	Deny            []string      `yaml:"deny"`
	Path            string        `yaml:"path"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	t := anim.DefaultTiming()
	on, lead := true, t.SlideLead
	return &Config{
		Theme:      "Dark",
		Animations: &on,
		Animation: Animation{
			Typewriter: t.Typewriter,
			FadeStep:   t.FadeStep,
			SlideStep:  t.SlideStep,
			SlideCols:  t.SlideCols,
			SlideLead:  &lead,
			RowDelay:   t.PerRow,
		},
		Shell: Shell{MaxVisibleLines: slide.DefaultMaxVisible},
	}
}

// Load reads settings. An explicit path must exist and parse. Without one
// the working directory and then the user config directory are searched;
// a missing or unreadable file there yields the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return parse(data, path)
	}

	path = findConfigPath()
	if path == "" {
		return Default(), nil
	}
	// #nosec G304 -- path is the local file or one under the user config dir
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		return Default(), nil
	}
	cfg, err := parse(data, path)
	if err != nil {
		log.Printf("config: %v, using defaults", err)
		return Default(), nil
	}
	return cfg, nil
}

func parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	log.Printf("config: loaded %s", path)
	return mergeWithDefaults(&cfg), nil
}

// findConfigPath looks for the settings file in the working directory, then
// in the user config directory.
func findConfigPath() string {
	if exists(FileName) {
		return FileName
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "mdslides", "config.yaml")
	if exists(p) {
		return p
	}
	return ""
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// mergeWithDefaults fills in missing values from the defaults.
func mergeWithDefaults(c *Config) *Config {
	def := Default()
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	if c.Animations == nil {
		c.Animations = def.Animations
	}

	a, da := &c.Animation, def.Animation
	if a.Typewriter <= 0 {
		a.Typewriter = da.Typewriter
	}
	if a.FadeStep <= 0 {
		a.FadeStep = da.FadeStep
	}
	if a.SlideStep <= 0 {
		a.SlideStep = da.SlideStep
	}
	if a.SlideCols <= 0 {
		a.SlideCols = da.SlideCols
	}
	if a.SlideLead == nil || *a.SlideLead < 0 {
		a.SlideLead = da.SlideLead
	}
	if a.RowDelay <= 0 {
		a.RowDelay = da.RowDelay
	}

	if c.Shell.MaxVisibleLines <= 0 {
		c.Shell.MaxVisibleLines = def.Shell.MaxVisibleLines
	}
	return c
}

// Timing returns the animation speeds.
func (c *Config) Timing() anim.Timing {
	a := c.Animation
	lead := anim.DefaultTiming().SlideLead
	if a.SlideLead != nil {
		lead = *a.SlideLead
	}
	return anim.Timing{
		Typewriter: a.Typewriter,
		FadeStep:   a.FadeStep,
		SlideStep:  a.SlideStep,
		SlideCols:  a.SlideCols,
		SlideLead:  lead,
		PerRow:     a.RowDelay,
	}
}

// ThemeTable returns the built-in themes with the configured overrides.
// Overrides are applied in name order so added themes cycle predictably.
func (c *Config) ThemeTable() *theme.Table {
	tbl := theme.Default()
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tbl.Override(name, c.Themes[name])
	}
	return tbl
}

// FallbackTable returns the ASCII substitutions with configured extras.
func (c *Config) FallbackTable() *charset.Table {
	return charset.Default().With(c.Fallback)
}

// ShellOptions returns the runner options for the shell settings.
func (c *Config) ShellOptions() []shell.Option {
	var opts []shell.Option
	if len(c.Shell.Deny) > 0 {
		opts = append(opts, shell.WithDeny(c.Shell.Deny...))
	}
	if c.Shell.Path != "" {
		opts = append(opts, shell.WithShell(c.Shell.Path))
	}
	if c.Shell.Timeout > 0 {
		opts = append(opts, shell.WithTimeout(c.Shell.Timeout))
	}
	return opts
}

// AnimationsEnabled reports the configured animation default.
func (c *Config) AnimationsEnabled() bool {
	return c.Animations == nil || *c.Animations
}
