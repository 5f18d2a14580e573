package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestValidateSource(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("0123456789"), 0o644))
	info := stat(t, file)

	assert.NoError(t, ValidateSource(file, info, 100))
	assert.NoError(t, ValidateSource(file, info, 0))

	err := ValidateSource("  ", info, 5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("path"))
	assert.True(t, verr.Has("size"))
	assert.Equal(t, "path: path is required; size: 10 bytes exceeds the 5 byte limit", err.Error())
}

func TestValidateSourceRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	err := ValidateSource(dir, stat(t, dir), 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{{Field: "type", Reason: "is a directory"}}, verr.Violations)
}
