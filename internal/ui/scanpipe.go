package ui

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buildsweep/buildsweep/internal/scan"
)

// startScan kicks off a background scan and opens the progress popup. The
// caller guarantees no scan is already in flight.
func (a *App) startScan() tea.Cmd {
	a.scanning = true
	sc := newScanningPopup(a.logs)
	a.popup = sc

	roots := a.cfg.ScanPaths
	if len(roots) == 0 {
		roots = []string{"."}
	}
	excluded := make([]string, len(a.cfg.ExcludedPaths))
	copy(excluded, a.cfg.ExcludedPaths)

	go a.runScan(roots, excluded)
	return sc.spin.Tick
}

// runScan walks every configured root, records each discovered artifact in
// the store and registers it with the build watcher, then delivers the full
// path list over the one-shot result channel. It runs off the render loop
// and touches no session state.
func (a *App) runScan(roots, excluded []string) {
	a.logs.Append("Starting scan...")
	var found []string

	for _, root := range roots {
		a.logs.Append(fmt.Sprintf("Scanning path: %s", root))
		before := len(found)

		scan.Walk(root, scan.DefaultMaxDepth, func(path string, entry fs.DirEntry) {
			if !scan.IsBuildDir(entry.Name()) || scan.Excluded(path, excluded) {
				return
			}
			found = append(found, path)
			a.recordArtifact(path)
		})

		a.logs.Append(fmt.Sprintf("Scan complete for %s. Found %d artifacts.", root, len(found)-before))
	}

	a.logs.Append(fmt.Sprintf("Total scan complete. Found %d artifacts.", len(found)))
	a.scanResults <- found
}

// recordArtifact persists a discovered artifact as a build event and puts the
// path under watch. Both failures are non-fatal to the scan.
func (a *App) recordArtifact(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	project := filepath.Dir(path)
	if err := a.store.InsertBuild(ctx, project, scan.DetectLanguage(project), path, scan.DirSize(path)); err != nil {
		a.logs.Append(fmt.Sprintf("[SCAN] failed to record %s: %v", path, err))
	}
	if a.watcher != nil {
		_ = a.watcher.Watch(path)
	}
}
