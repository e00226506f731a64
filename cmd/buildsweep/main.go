// Command buildsweep is an interactive terminal UI for finding, inspecting,
// and cleaning up stale build-output directories (target/, node_modules/,
// build/, ...) across local projects.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/buildsweep/buildsweep/internal/config"
	"github.com/buildsweep/buildsweep/internal/store"
	"github.com/buildsweep/buildsweep/internal/ui"
	"github.com/buildsweep/buildsweep/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "buildsweep:", err)
		os.Exit(1)
	}
}

func run() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("buildsweep requires an interactive terminal")
	}

	cfg := config.Load()
	setupLogging(cfg)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer st.Close()

	app := ui.New(cfg, st, nil)

	watcher, err := watch.New(cfg.DebugLogs, func(path string) {
		app.Logs().Append(fmt.Sprintf("[WATCH] change detected: %s", path))
	})
	if err != nil {
		return fmt.Errorf("create build watcher: %w", err)
	}
	defer watcher.Close()
	go watcher.Start()
	app.SetWatcher(watcher)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// setupLogging routes the standard logger to a rotating debug log when debug
// logging is enabled, and discards it otherwise so log output never corrupts
// the terminal UI.
func setupLogging(cfg config.Config) {
	if !cfg.DebugLogs {
		log.SetOutput(io.Discard)
		return
	}
	dir, err := config.Dir()
	if err != nil {
		dir = "."
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "debug.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	})
}
