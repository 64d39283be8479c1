package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/pcrypt/internal/commands"
	"github.com/idelchi/pcrypt/internal/config"
)

func execute(t *testing.T, args ...string) (*config.Config, string, error) {
	t.Helper()

	cfg := &config.Config{}
	root := commands.NewRootCommand(cfg, "test")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return cfg, out.String(), err
}

func TestKeyCommand(t *testing.T) {
	t.Parallel()

	_, out, err := execute(t, "key")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 64)
}

func TestEncryptDecryptCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "doc.txt")
	content := []byte(strings.Repeat("0123456789abcdef", 40) + "tail")

	require.NoError(t, os.WriteFile(file, content, 0o600))

	key := strings.Repeat("a1", 32)

	cfg, _, err := execute(t, "encrypt", "--quiet", "--log-level", "error", "--key", key, "--mode", "ecb", "-w", "3", file)
	require.NoError(t, err)
	assert.Equal(t, "ecb", cfg.Mode)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{file}, cfg.Files)

	require.NoError(t, os.Remove(file))

	cfg, _, err = execute(t, "decrypt", "--quiet", "--log-level", "error", "--key", key, file+".enc")
	require.NoError(t, err)
	assert.True(t, cfg.Decrypt)

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestExclusiveKeyFlags(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "encrypt", "--key", "00", "--key-file", "k.txt", "some-file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclusive")
}

func TestInvalidMode(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "encrypt", "--key", "00", "--mode", "ofb", "some-file")
	require.Error(t, err)
}

func TestDefaultsApplyWithoutFlags(t *testing.T) {
	t.Parallel()

	cfg, _, err := execute(t, "key")
	require.NoError(t, err)

	assert.Equal(t, "ctr", cfg.Mode)
	assert.Equal(t, ".enc", cfg.Suffixes.Encrypt)
	assert.Equal(t, "data", cfg.Bench.DataDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Positive(t, cfg.Workers)
}

func TestShow(t *testing.T) {
	t.Parallel()

	key := strings.Repeat("c3", 32)

	_, out, err := execute(t, "encrypt", "--show", "--key", key, "--mode", "ecb", "doc.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "mode: ecb")
	assert.Contains(t, out, "encrypt-ext:")
	assert.NotContains(t, out, key)

	_, out, err = execute(t, "serve", "--show", "--addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "127.0.0.1:0")
}

func TestConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcrypt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: ecb\nworkers: 7\nlog-level: warn\n"), 0o600))

	t.Setenv("PCRYPT_WORKERS", "9")

	cfg, _, err := execute(t, "key", "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "ecb", cfg.Mode, "from file")
	assert.Equal(t, 9, cfg.Workers, "environment beats file")
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDataAndBenchCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	results := filepath.Join(dir, "results")

	_, _, err := execute(t, "data", "--quiet", "--log-level", "error", "--data-dir", data, "1")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(data, "sample_1MB.bin"))
	require.NoError(t, err)

	_, _, err = execute(t, "bench", "--quiet", "--log-level", "error",
		"--data-dir", data, "--results-dir", results,
		"--sizes", "1", "--modes", "ctr", "--threads", "1,2")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(results, "benchmarks.json"))
	require.NoError(t, err)

	_, _, err = execute(t, "data", "zero")
	require.Error(t, err)
}
