// Package main runs the portfolio page in the terminal.
//
// The page is a fixed header of navigation links above four
// full-viewport sections. Scrolling with the arrow keys, page keys or
// the mouse wheel moves through the sections; the header link of the
// section filling the middle of the screen is highlighted.
//
// Usage:
//
//	portfolio [--config file] [--log file] [--debug file] [--root-margin margin] [--no-fallback]
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/grindlemire/go-scrollspy/internal/config"
	"github.com/grindlemire/go-scrollspy/internal/debug"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// flags override the loaded configuration.
type flags struct {
	configPath string
	logPath    string
	debugPath  string
	rootMargin string
	noFallback bool
}

func (f flags) apply(cfg config.Config) config.Config {
	if f.logPath != "" {
		cfg.Log.Path = f.logPath
	}
	if f.rootMargin != "" {
		cfg.RootMargin = f.rootMargin
	}
	if f.noFallback {
		cfg.Fallback = false
	}
	return cfg
}

func newRootCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "portfolio",
		Short:        "Scroll through the portfolio page",
		Long:         `Renders the portfolio page and highlights the header link of the section in view.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (default $HOME/.config/scrollspy/config.toml)")
	cmd.Flags().StringVar(&f.logPath, "log", "", "write a log to this file")
	cmd.Flags().StringVar(&f.debugPath, "debug", "", "write tracking session traces to this file (default $"+debug.EnvVar+")")
	cmd.Flags().StringVar(&f.rootMargin, "root-margin", "", `activation band as a CSS root margin, e.g. "-40% 0px -40% 0px"`)
	cmd.Flags().BoolVar(&f.noFallback, "no-fallback", false, "skip the initial visibility scan")

	return cmd
}

func run(f flags) error {
	loader := config.NewLoader(f.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	cfg = f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, flush, err := newLogger(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer flush()

	if f.debugPath != "" {
		if err := debug.Init(f.debugPath); err != nil {
			return err
		}
	}
	defer debug.Close()

	m, err := newModel(cfg, logger)
	if err != nil {
		return err
	}
	defer m.stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	err = loader.Watch(func(cfg config.Config, err error) {
		if err != nil {
			p.Send(configErrMsg{err: err})
			return
		}
		p.Send(configMsg{cfg: f.apply(cfg)})
	})
	if err != nil {
		logger.Debug("config reload disabled", "reason", err)
	} else {
		logger.Info("watching config", "file", loader.File())
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
