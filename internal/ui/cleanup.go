package ui

import (
	"context"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/buildsweep/buildsweep/internal/remove"
	"github.com/buildsweep/buildsweep/internal/store"
)

// cleanupWorkers bounds concurrent filesystem removals during retention
// cleanup.
const cleanupWorkers = 4

// runRetentionCleanup deletes every artifact whose newest build event is
// older than the retention threshold, then prunes the store. It runs
// detached: a failed stale-path query aborts silently, and per-path removal
// failures are logged but never surfaced to the session.
func runRetentionCleanup(st *store.Store, retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	stale, err := st.StalePaths(ctx, retentionDays)
	if err != nil {
		return
	}
	if len(stale) == 0 {
		return
	}
	log.Printf("[CLEANUP] removing %d stale artifacts older than %d days", len(stale), retentionDays)

	var g errgroup.Group
	g.SetLimit(cleanupWorkers)
	for _, path := range stale {
		g.Go(func() error {
			if remove.ValidatePath(path) != nil {
				return nil
			}
			if err := os.RemoveAll(path); err != nil {
				log.Printf("[CLEANUP] failed to remove %s: %v", path, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := st.DeleteOlderThan(ctx, retentionDays); err != nil {
		log.Printf("[CLEANUP] failed to prune store: %v", err)
		return
	}
	log.Printf("[CLEANUP] done")
}
