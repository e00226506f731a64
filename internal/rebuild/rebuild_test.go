package rebuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		marker string
		want   string
	}{
		{"Cargo.toml", "cargo build"},
		{"package.json", "npm run build"},
		{"go.mod", "go build ./..."},
		{"Makefile", "make"},
	}
	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.marker), nil, 0o644))
			assert.Equal(t, tt.want, Command(dir))
		})
	}
}

func TestCommand_UnknownProject(t *testing.T) {
	assert.Empty(t, Command(t.TempDir()))
}

func TestCommand_PrefersCargoOverMakefile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), nil, 0o644))
	assert.Equal(t, "cargo build", Command(dir))
}

func TestStart_UnknownProjectIsNoop(t *testing.T) {
	// Must not panic or spawn anything for a project with no build system.
	Start(filepath.Join(t.TempDir(), "target"))
}
