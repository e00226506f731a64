// Package ui implements the interactive session: the controller owning all
// session state, the modal overlay state machine, the background scan
// pipeline, and the privileged deletion flows.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildsweep/buildsweep/internal/config"
	"github.com/buildsweep/buildsweep/internal/rebuild"
	"github.com/buildsweep/buildsweep/internal/remove"
	"github.com/buildsweep/buildsweep/internal/store"
	"github.com/buildsweep/buildsweep/internal/watch"
)

// tickInterval is the input-poll timeout of the render loop: the loop
// re-renders at least this often, which is the only mechanism by which
// background completion becomes visible without a keypress.
const tickInterval = 100 * time.Millisecond

// storeTimeout bounds individual artifact-store queries issued from the
// render loop.
const storeTimeout = 5 * time.Second

// Panels, in Tab-cycle order.
const (
	panelArtifacts = iota
	panelHistory
	panelCharts
	panelSettings
	panelSummary
	panelCount
)

// Pending privileged actions awaiting a credential.
const (
	actionDelete                = "delete"
	actionClearAll              = "clear_all"
	actionRebuild               = "rebuild"
	actionExclude               = "exclude"
	actionEnableAutoRemoval     = "enable_automatic_removal"
	actionRemoveExcludedPrefix  = "remove_excluded:"
	msgEnableAutoRemovalWarning = "AUTOMATIC REMOVAL WILL DELETE OLD ARTIFACTS\n\n" +
		"Any directory matching a known build path with no build event\n" +
		"newer than the retention threshold will be permanently deleted\n" +
		"after each scan.\n\nEnable automatic removal?"
)

type tickMsg time.Time

// chartEntry is one (path, size) pair of the chart panel.
type chartEntry struct {
	path string
	size int64
}

// App is the session controller. It owns all session state and is the only
// writer of it; background tasks communicate exclusively through the shared
// log buffer and the one-shot scan result channel.
type App struct {
	cfg     config.Config
	store   *store.Store
	watcher *watch.Watcher

	artifacts []string
	selected  int
	focused   int

	scanning         bool
	scanned          bool
	automaticRemoval bool

	buildHistory  []string
	totalBuilds   int
	chartData     []chartEntry
	chartSelected int

	popup popup
	logs  *logBuffer

	pendingAction      string
	pendingFailedPaths []string

	// scanResults has capacity one and a single producer per scan; the
	// controller drains at most one result per tick, so completion is
	// observed exactly once.
	scanResults chan []string

	// Collaborator seams, overridable in tests.
	removeFn   remove.Func
	saveConfig func(config.Config) error
	rebuildFn  func(artifactPath string)

	width  int
	height int
}

// New creates the session controller, loading the artifact list and history
// from the store. Store errors degrade to empty state.
func New(cfg config.Config, st *store.Store, w *watch.Watcher) *App {
	a := &App{
		cfg:              cfg,
		store:            st,
		watcher:          w,
		automaticRemoval: cfg.AutomaticRemoval,
		logs:             newLogBuffer(),
		scanResults:      make(chan []string, 1),
		removeFn:         remove.Privileged,
		saveConfig:       config.Save,
		rebuildFn:        rebuild.Start,
	}
	a.loadArtifacts()
	a.loadHistory()
	return a
}

// Logs exposes the shared log buffer so collaborators wired up in main (the
// build watcher) can report into the visible log.
func (a *App) Logs() interface{ Append(string) } {
	return a.logs
}

// SetWatcher attaches the build watcher. It must be called before the
// program starts; scans register discovered artifacts with it.
func (a *App) SetWatcher(w *watch.Watcher) {
	a.watcher = w
}

func (a *App) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tickMsg:
		var cmds []tea.Cmd
		// First iteration with no scan done and none in flight starts one.
		if !a.scanned && !a.scanning {
			cmds = append(cmds, a.startScan())
		}
		a.drainScanResult()
		cmds = append(cmds, tick())
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if sc, ok := a.popup.(*scanningPopup); ok {
			var cmd tea.Cmd
			sc.spin, cmd = sc.spin.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

// drainScanResult consumes at most one pending scan result and reconciles
// session state with it.
func (a *App) drainScanResult() {
	select {
	case paths := <-a.scanResults:
		a.artifacts = paths
		a.scanning = false
		a.scanned = true
		a.clampSelection()
		a.popup = &infoPopup{message: fmt.Sprintf("Scan complete. Found %d artifacts.", len(paths))}
		a.loadHistory()
		if a.automaticRemoval {
			// Detached: outcome is not joined or reported beyond its own
			// side effects; the next history reload picks them up.
			go runRetentionCleanup(a.store, a.cfg.RetentionDays)
		}
	default:
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The user-issued quit is the only fatal condition.
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// While a popup is open it is the sole interpreter of key input.
	if a.popup != nil {
		prev := a.popup
		next, cmd := a.popup.handleKey(msg)
		a.popup = next
		if cmd != nil {
			return a, a.apply(cmd)
		}
		// Cancelling the credential prompt abandons the parked action; a
		// pending action exists only while its prompt is open.
		if next == nil && a.pendingAction != "" {
			if in, ok := prev.(*inputPopup); ok && in.title == titlePasswordPrompt {
				a.pendingAction = ""
				a.pendingFailedPaths = nil
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab":
		a.focused = (a.focused + 1) % panelCount
	case "enter":
		switch a.focused {
		case panelArtifacts:
			a.popup = &actionsPopup{}
		case panelSettings:
			a.popup = &settingsPopup{}
		}
	case "s":
		if !a.scanning {
			return a, a.startScan()
		}
	case "d":
		a.popup = &confirmPopup{message: "Delete this artifact?", action: actionDelete}
	case "x", "X":
		if a.focused == panelArtifacts && a.selected < len(a.artifacts) {
			a.popup = &confirmPopup{message: "Exclude this path from scanning?", action: actionExclude}
		}
	case "r":
		a.rebuildSelected()
	case "h":
		a.loadHistory()
	case "e":
		a.popup = &settingsPopup{}
	case "l":
		a.popup = &logsPopup{logs: a.logs}
	case "D":
		a.popup = &clearAllPopup{}
	case "up", "pgup":
		switch a.focused {
		case panelArtifacts:
			if a.selected > 0 {
				a.selected--
			}
		case panelCharts:
			if a.chartSelected > 0 {
				a.chartSelected--
			}
		}
	case "down", "pgdown":
		switch a.focused {
		case panelArtifacts:
			if a.selected < len(a.artifacts)-1 {
				a.selected++
			}
		case panelCharts:
			if a.chartSelected < len(a.chartData)-1 {
				a.chartSelected++
			}
		}
	}
	return a, nil
}

// apply executes a command emitted by the modal state machine.
func (a *App) apply(cmd *command) tea.Cmd {
	switch cmd.kind {
	case cmdOpenInput:
		initial := ""
		if cmd.title == titleRetentionDays {
			initial = strconv.Itoa(a.cfg.RetentionDays)
		}
		a.popup = newInputPopup(cmd.title, initial)

	case cmdOpenDirBrowse:
		a.popup = newDirBrowsePopup("/")

	case cmdToggleRemoval:
		if !a.automaticRemoval {
			a.popup = &confirmPopup{message: msgEnableAutoRemovalWarning, action: actionEnableAutoRemoval}
		} else {
			a.automaticRemoval = false
			a.persistConfig()
		}

	case cmdOpenExcludedPaths:
		paths := make([]string, len(a.cfg.ExcludedPaths))
		copy(paths, a.cfg.ExcludedPaths)
		a.popup = &excludedPopup{paths: paths}

	case cmdSetValue:
		a.setValue(cmd.title, cmd.value)

	case cmdDeleteArtifact:
		a.popup = &confirmPopup{message: "Delete this artifact?", action: actionDelete}

	case cmdRebuildArtifact:
		a.popup = &confirmPopup{message: "Rebuild this project?", action: actionRebuild}

	case cmdClearAllBuilds:
		a.clearAllBuilds()

	case cmdConfirmAction:
		return a.confirmAction(cmd.action)
	}
	return nil
}

// setValue applies an Input popup submission. Malformed values are silently
// discarded and the prior value retained.
func (a *App) setValue(key, value string) {
	switch key {
	case titleRetentionDays:
		if days, err := strconv.Atoi(value); err == nil && days > 0 {
			a.cfg.RetentionDays = days
			a.persistConfig()
		}
	case titleScanPath:
		a.cfg.ScanPaths = []string{value}
		a.persistConfig()
	case titlePasswordPrompt:
		a.submitCredential(value)
	}
}

func (a *App) confirmAction(action string) tea.Cmd {
	if path, ok := strings.CutPrefix(action, actionRemoveExcludedPrefix); ok {
		kept := a.cfg.ExcludedPaths[:0]
		for _, p := range a.cfg.ExcludedPaths {
			if p != path {
				kept = append(kept, p)
			}
		}
		a.cfg.ExcludedPaths = kept
		a.persistConfig()
		a.popup = &infoPopup{message: "Removed from exclusion list. Rescanning..."}
		if !a.scanning {
			return a.startScan()
		}
		return nil
	}

	switch action {
	case actionDelete:
		a.popup = &progressPopup{message: "Deleting artifact..."}
		a.deleteSelected()
	case actionRebuild:
		a.rebuildSelected()
		a.popup = &progressPopup{message: "Rebuilding project..."}
	case actionExclude:
		if a.selected < len(a.artifacts) {
			path := a.artifacts[a.selected]
			a.cfg.ExcludedPaths = append(a.cfg.ExcludedPaths, path)
			a.removeArtifactAt(a.selected)
			a.persistConfig()
			a.popup = &infoPopup{message: "Path added to exclusion list."}
		}
	case actionEnableAutoRemoval:
		a.automaticRemoval = true
		a.cfg.AutomaticRemoval = true
		a.persistConfig()
		a.popup = &infoPopup{message: "Automatic removal enabled. Old artifacts will be cleaned up after scans."}
	}
	return nil
}

func (a *App) rebuildSelected() {
	if len(a.artifacts) == 0 {
		return
	}
	a.rebuildFn(a.artifacts[a.selected])
}

// removeArtifactAt removes the artifact at index i, clamping the selection
// back into range.
func (a *App) removeArtifactAt(i int) {
	a.artifacts = append(a.artifacts[:i], a.artifacts[i+1:]...)
	a.clampSelection()
}

func (a *App) clampSelection() {
	if a.selected >= len(a.artifacts) {
		a.selected = len(a.artifacts) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
	if a.chartSelected >= len(a.chartData) {
		a.chartSelected = len(a.chartData) - 1
	}
	if a.chartSelected < 0 {
		a.chartSelected = 0
	}
}

func (a *App) persistConfig() {
	a.cfg.AutomaticRemoval = a.automaticRemoval
	_ = a.saveConfig(a.cfg)
}

// loadArtifacts seeds the artifact list from the store at startup. Errors
// leave the list empty.
func (a *App) loadArtifacts() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if paths, err := a.store.RecentArtifacts(ctx, 50); err == nil {
		a.artifacts = paths
	}
}

// loadHistory refreshes the history, total and chart panels from the store.
// Every query failure falls back to an empty default; nothing here may
// terminate the session.
func (a *App) loadHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	events, err := a.store.RecentBuilds(ctx, 10)
	if err != nil {
		a.buildHistory = []string{"Failed to load history"}
	} else {
		a.buildHistory = a.buildHistory[:0]
		for _, ev := range events {
			a.buildHistory = append(a.buildHistory,
				fmt.Sprintf("%s - %s - %s", ev.ProjectPath, ev.Language, ev.BuildTime.Format("2006-01-02 15:04")))
		}
	}

	a.totalBuilds = 0
	if n, err := a.store.CountBuilds(ctx); err == nil {
		a.totalBuilds = n
	}

	a.chartData = nil
	if sizes, err := a.store.MaxSizes(ctx); err == nil {
		known := make(map[string]bool, len(a.artifacts))
		for _, p := range a.artifacts {
			known[p] = true
		}
		for _, ps := range sizes {
			if known[ps.ArtifactPath] {
				a.chartData = append(a.chartData, chartEntry{path: ps.ArtifactPath, size: ps.SizeBytes})
			}
		}
	}
	a.clampSelection()
}
