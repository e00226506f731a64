package ui

import (
	"context"
	"fmt"

	"github.com/buildsweep/buildsweep/internal/remove"
)

// deleteSelected attempts a passwordless privileged removal of the selected
// artifact. On failure the action is parked and the credential prompt opens;
// the retry happens in submitCredential.
func (a *App) deleteSelected() {
	if len(a.artifacts) == 0 {
		a.popup = nil
		return
	}
	path := a.artifacts[a.selected]
	if err := remove.ValidatePath(path); err != nil {
		a.popup = &infoPopup{message: "Refusing to delete unsafe path."}
		return
	}

	if a.removeFn(path, "") {
		a.removeArtifactAt(a.selected)
		a.deleteFromStore(path)
		a.popup = &infoPopup{message: "Artifact deleted."}
		return
	}

	a.logs.Append(fmt.Sprintf("[DELETE] passwordless removal failed for %s, requesting credentials", path))
	a.pendingAction = actionDelete
	a.popup = newInputPopup(titlePasswordPrompt, "")
}

// clearAllBuilds removes every listed artifact, passwordless first. Paths
// that fail are remembered so a credential retry targets only them. Paths the
// removal primitive refuses stay listed and are never attempted.
func (a *App) clearAllBuilds() {
	// A fresh batch forgets failures tracked from any previous one.
	a.pendingFailedPaths = nil

	var failed, unsafe []string
	remaining := a.artifacts[:0]
	for _, path := range a.artifacts {
		if remove.ValidatePath(path) != nil {
			unsafe = append(unsafe, path)
			remaining = append(remaining, path)
			continue
		}
		if a.removeFn(path, "") {
			continue
		}
		failed = append(failed, path)
		remaining = append(remaining, path)
	}
	a.artifacts = remaining
	a.clampSelection()

	if len(failed) == 0 {
		if len(unsafe) > 0 {
			a.popup = &infoPopup{message: fmt.Sprintf("Builds cleared; %d unsafe paths were skipped.", len(unsafe))}
			return
		}
		a.artifacts = nil
		a.selected = 0
		a.deleteAllFromStore()
		a.loadHistory()
		a.popup = &infoPopup{message: "All builds cleared."}
		return
	}

	a.logs.Append(fmt.Sprintf("[DELETE] %d paths need elevated removal", len(failed)))
	a.pendingFailedPaths = failed
	a.pendingAction = actionClearAll
	a.popup = newInputPopup(titlePasswordPrompt, "")
}

// submitCredential consumes the pending action with the supplied password.
// The pending action is cleared before the retry so a failed retry cannot be
// resubmitted against stale state; the password itself is never retained.
func (a *App) submitCredential(password string) {
	action := a.pendingAction
	a.pendingAction = ""

	switch action {
	case actionDelete:
		if len(a.artifacts) == 0 {
			return
		}
		path := a.artifacts[a.selected]
		if a.removeFn(path, password) {
			a.removeArtifactAt(a.selected)
			a.deleteFromStore(path)
			a.popup = &infoPopup{message: "Artifact deleted successfully."}
		} else {
			a.popup = &infoPopup{message: "Deletion failed - please check permissions or try again."}
		}

	case actionClearAll:
		var stillFailing []string
		removed := make(map[string]bool)
		for _, path := range a.pendingFailedPaths {
			if a.removeFn(path, password) {
				removed[path] = true
			} else {
				stillFailing = append(stillFailing, path)
			}
		}
		remaining := a.artifacts[:0]
		for _, p := range a.artifacts {
			if !removed[p] {
				remaining = append(remaining, p)
			}
		}
		a.artifacts = remaining
		a.clampSelection()

		if len(stillFailing) == 0 {
			a.pendingFailedPaths = nil
			// Anything still listed was skipped as unsafe, not removed.
			if len(a.artifacts) == 0 {
				a.deleteAllFromStore()
			}
			a.popup = &infoPopup{message: "All builds cleared successfully."}
		} else {
			a.pendingFailedPaths = stillFailing
			a.popup = &infoPopup{message: "Some deletions failed - please check permissions."}
		}
	}
}

// deleteFromStore drops the path's build events in the background; the
// filesystem removal already succeeded and must not wait on bookkeeping.
func (a *App) deleteFromStore(path string) {
	st := a.store
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		_ = st.DeleteByPath(ctx, path)
	}()
}

func (a *App) deleteAllFromStore() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	_ = a.store.DeleteAll(ctx)
}
