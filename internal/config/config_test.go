package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ostafen/bootinfo/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	require.Equal(t, &config.Config{
		HashDir:       ".",
		HashChunkSize: "4KB",
		Segmented:     true,
		LogLevel:      "INFO",
		Decompress:    "none",
	}, cfg)

	n, err := cfg.ChunkSize()
	require.NoError(t, err)
	require.Equal(t, 4096, n)
}

func TestEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOOTINFO_HASH_DIR", "/tmp/hashes")
	t.Setenv("BOOTINFO_PARALLEL", "true")
	t.Setenv("BOOTINFO_HASH_CHUNK_SIZE", "1MB")

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	require.Equal(t, "/tmp/hashes", cfg.HashDir)
	require.True(t, cfg.Parallel)

	n, err := cfg.ChunkSize()
	require.NoError(t, err)
	require.Equal(t, 1<<20, n)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	data := "hash_dir: out\nno_hash: true\nlog_level: DEBUG\ndecompress: auto\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bootinfo.yaml"), []byte(data), 0o644))

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	require.Equal(t, "out", cfg.HashDir)
	require.True(t, cfg.NoHash)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, "auto", cfg.Decompress)

	_, err = config.Load(config.New(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestFlagsTakePrecedence(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOOTINFO_HASH_DIR", "/from/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("hash-dir", ".", "")
	flags.Bool("mmap", false, "")
	flags.Bool("segmented", true, "")
	require.NoError(t, flags.Parse([]string{"--hash-dir", "/from/flag", "--mmap"}))

	v := config.New()
	require.NoError(t, config.BindFlags(v, flags))

	cfg, err := config.Load(v, "")
	require.NoError(t, err)
	require.Equal(t, "/from/flag", cfg.HashDir)
	require.True(t, cfg.Mmap)
	require.True(t, cfg.Segmented)
}

func TestValidate(t *testing.T) {
	valid := config.Config{HashChunkSize: "4KB", LogLevel: "warn", Decompress: "zstd"}
	require.NoError(t, valid.Validate())

	for _, cfg := range []config.Config{
		{HashChunkSize: "zero", LogLevel: "INFO", Decompress: "none"},
		{HashChunkSize: "0", LogLevel: "INFO", Decompress: "none"},
		{HashChunkSize: "4KB", LogLevel: "TRACE", Decompress: "none"},
		{HashChunkSize: "4KB", LogLevel: "INFO", Decompress: "xz"},
	} {
		require.Error(t, cfg.Validate())
	}
}
