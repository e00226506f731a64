// Package rebuild launches build commands for a project whose artifact was
// inspected or deleted. Commands are fire-and-forget: the spawned process is
// not waited on and its outcome is not reported.
package rebuild

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// buildSystems maps project marker files to the command that rebuilds the
// project, checked in order.
var buildSystems = []struct {
	marker  string
	command string
}{
	{"Cargo.toml", "cargo build"},
	{"package.json", "npm run build"},
	{"go.mod", "go build ./..."},
	{"Makefile", "make"},
}

// Command returns the rebuild command for the project root, or "" when no
// known build system is detected.
func Command(projectRoot string) string {
	for _, bs := range buildSystems {
		if _, err := os.Stat(filepath.Join(projectRoot, bs.marker)); err == nil {
			return bs.command
		}
	}
	return ""
}

// Start detects the build system of the project owning artifactPath and
// spawns its rebuild command detached. Unknown build systems and spawn
// failures are ignored.
func Start(artifactPath string) {
	projectRoot := filepath.Dir(artifactPath)
	command := Command(projectRoot)
	if command == "" {
		return
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = projectRoot
	if err := cmd.Start(); err != nil {
		return
	}
	log.Printf("[REBUILD] started %q in %s (pid %d)", command, projectRoot, cmd.Process.Pid)
	// Reap the child when it exits; the result is deliberately dropped.
	go func() { _ = cmd.Wait() }()
}
