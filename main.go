package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"mdslides/internal/anim"
	"mdslides/internal/charset"
	"mdslides/internal/config"
	"mdslides/internal/markdown"
	"mdslides/internal/present"
	"mdslides/internal/shell"
	"mdslides/internal/term"
	"mdslides/internal/theme"
	"mdslides/internal/tui"
)

var version = "dev"

const example = `  mdslides talk.md
  mdslides --theme matrix --no-animations talk.md
  mdslides --backend raw slides/

Slides are separated by a line containing only ---:

  # Title Slide
  This is the content
  ---
  ## Second Slide
  - Bullet point 1
  - Bullet point 2
  ---
  ### Code Example
  ` + "```cpp" + `
  int main() {
      return 0;
  }
  ` + "```" + `
  ---
  ### Shell Command Demo
  ` + "```$ls -la" + `
  ` + "```" + `
  ` + "```$date" + `
  ` + "```"

const (
	backendTUI = "tui"
	backendRaw = "raw"
)

type flags struct {
	backend      string
	theme        string
	configPath   string
	debugLog     string
	noAnimations bool
	ascii        bool
	utf8         bool
}

// session is a loaded presentation ready to run.
type session struct {
	presenter *present.Presenter
	timing    anim.Timing
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "mdslides <file.md|dir>",
		Short:         "Present markdown slides in the terminal",
		Example:       example,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch f.backend {
			case backendTUI, backendRaw:
			default:
				return fmt.Errorf("invalid --backend value: %q (use %s|%s)", f.backend, backendTUI, backendRaw)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			closeLog, err := setupLog(f.debugLog)
			if err != nil {
				return err
			}
			defer closeLog()

			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return errors.New("stdout is not a TTY (refusing to render ANSI output)")
			}

			width := 80
			if w, _, err := xterm.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			s, err := prepare(f, args[0], width, os.Getenv)
			if err != nil {
				return err
			}
			return run(cmd.Context(), f.backend, s)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.backend, "backend", backendTUI, "terminal backend: tui or raw")
	fl.StringVar(&f.theme, "theme", "", "starting theme (Dark, Light, Matrix, Retro or a configured theme)")
	fl.StringVar(&f.configPath, "config", "", "config file (default ./.mdslides.yaml, then the user config dir)")
	fl.StringVar(&f.debugLog, "debug-log", "", "write debug log to this file (or set MDSLIDES_DEBUG_LOG)")
	fl.BoolVar(&f.noAnimations, "no-animations", false, "start with animations off")
	fl.BoolVar(&f.ascii, "ascii", false, "force ASCII output")
	fl.BoolVar(&f.utf8, "utf8", false, "force UTF-8 output")
	cmd.MarkFlagsMutuallyExclusive("ascii", "utf8")
	return cmd
}

// setupLog routes the log package to a file when debugging, and discards it
// otherwise so it never draws over the slides.
func setupLog(path string) (func(), error) {
	if path == "" {
		path = os.Getenv("MDSLIDES_DEBUG_LOG")
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "mdslides")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return func() { _ = f.Close() }, nil
}

// prepare loads the config and slides and builds the presenter.
func prepare(f flags, path string, width int, getenv func(string) string) (*session, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	src, err := loadSource(path)
	if err != nil {
		return nil, err
	}

	utf8 := charset.DetectUTF8(getenv)
	switch {
	case f.ascii:
		utf8 = false
	case f.utf8:
		utf8 = true
	}

	deck := markdown.New(markdown.Options{
		UTF8:       utf8,
		Width:      width,
		Fallback:   cfg.FallbackTable(),
		MaxVisible: cfg.Shell.MaxVisibleLines,
		RowDelay:   cfg.Animation.RowDelay,
	}).Parse(src.text)
	if deck.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, markdown.ErrNoSlides)
	}
	if src.title != "" {
		deck.Title = src.title
		if !utf8 {
			deck.Title = cfg.FallbackTable().Apply(deck.Title)
		}
	}
	log.Printf("load: %d slides, utf8=%t", deck.Len(), utf8)

	themes := cfg.ThemeTable()
	name := cfg.Theme
	if f.theme != "" {
		name = f.theme
	}
	idx, ok := themes.Index(name)
	if !ok {
		if f.theme != "" {
			return nil, fmt.Errorf("unknown theme %q (have %s)", f.theme, strings.Join(themeNames(themes), ", "))
		}
		log.Printf("config: unknown theme %q, using %s", name, themes.At(0).Name)
	}

	p := present.New(deck, themes, shell.New(cfg.ShellOptions()...),
		present.WithTheme(idx),
		present.WithUTF8(utf8),
		present.WithAnimations(cfg.AnimationsEnabled() && !f.noAnimations),
	)
	return &session{presenter: p, timing: cfg.Timing()}, nil
}

func themeNames(t *theme.Table) []string {
	names := make([]string, t.Len())
	for i := range names {
		names[i] = t.At(i).Name
	}
	return names
}

// run presents until the user quits or ctx is canceled.
func run(ctx context.Context, backend string, s *session) error {
	log.Printf("backend: %s", backend)
	if backend == backendRaw {
		t, err := term.New()
		if err != nil {
			return err
		}
		// a signal closes the screen, which ends the blocked key read
		stop := context.AfterFunc(ctx, func() { _ = t.Close() })
		defer stop()
		if err := present.Run(ctx, s.presenter, t, s.timing); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return tui.Run(ctx, s.presenter, tui.Options{Timing: s.timing})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
