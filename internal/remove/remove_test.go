package remove

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	assert.Error(t, ValidatePath(""))
	assert.Error(t, ValidatePath("/"))
	assert.Error(t, ValidatePath("."))
	assert.Error(t, ValidatePath("foo/.."))
	assert.NoError(t, ValidatePath("/home/dev/proj/target"))
	assert.NoError(t, ValidatePath("relative/node_modules"))
}

func TestPrivileged_RejectsUnsafePaths(t *testing.T) {
	assert.False(t, Privileged("", ""))
	assert.False(t, Privileged("/", ""))
	assert.False(t, Privileged(".", "hunter2"))
}
