package sysinfo

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	info, err := Stat()
	require.NoError(t, err)
	require.Equal(t, runtime.GOOS, info.Name)
	require.NotEmpty(t, info.Release)
}

func TestReadOSRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("NAME=\"Ubuntu\"\nVERSION=\"24.04 LTS (Noble Numbat)\"\nID=ubuntu\n"), 0o644))

	require.Equal(t, "Ubuntu 24.04 LTS (Noble Numbat)", readOSRelease(path))
	require.Empty(t, readOSRelease(filepath.Join(t.TempDir(), "missing")))
}
