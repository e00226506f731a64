// Package remove deletes directory trees that may require elevated
// permission. A passwordless attempt (sudo -n) is made first; callers retry
// with a credential on failure. The credential is passed to sudo over stdin,
// never as an argument, so it cannot leak through process listings.
package remove

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Func is the privileged-removal primitive's signature. It reports only
// success or failure, never the credential.
type Func func(path, password string) bool

// ValidatePath rejects paths whose deletion could never be intended.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("remove: empty path")
	}
	cleaned := filepath.Clean(path)
	if cleaned == "." || cleaned == string(os.PathSeparator) {
		return errors.New("remove: refusing to delete root")
	}
	return nil
}

// Privileged removes path via sudo. An empty password attempts a
// passwordless removal (sudo -n); otherwise the password is written to
// sudo's stdin (sudo -S). Output is suppressed: the passwordless attempt is
// expected to fail on most systems.
func Privileged(path, password string) bool {
	if err := ValidatePath(path); err != nil {
		return false
	}

	var cmd *exec.Cmd
	if password == "" {
		cmd = exec.Command("sudo", "-n", "rm", "-rf", path)
	} else {
		cmd = exec.Command("sudo", "-S", "rm", "-rf", path)
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if password == "" {
		return cmd.Run() == nil
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return false
	}
	if err := cmd.Start(); err != nil {
		return false
	}
	_, _ = fmt.Fprintf(stdin, "%s\n", password)
	stdin.Close()
	return cmd.Wait() == nil
}
