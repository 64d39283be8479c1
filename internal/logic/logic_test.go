package logic

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/pcrypt/internal/bench"
	"github.com/idelchi/pcrypt/internal/config"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		Concurrency: 2,
		Workers:     4,
		Mode:        "ctr",
		Quiet:       true,
		Suffixes:    config.Suffixes{Encrypt: ".enc"},
		Log:         config.Log{Level: "error", Format: "text"},
		Bench: config.Bench{
			DataDir:    filepath.Join(dir, "data"),
			ResultsDir: filepath.Join(dir, "results"),
		},
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := newLogger(config.Log{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("k", "v").Debug("hello")
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = newLogger(config.Log{Level: "loud", Format: "text"}, &buf)
	require.Error(t, err)
}

func TestRunKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RunKey(&buf))

	key, err := hex.DecodeString(strings.TrimSpace(buf.String()))
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestShow(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Key.String = strings.Repeat("5e", 32)
	cfg.PreserveTimestamps = true

	var buf bytes.Buffer
	require.NoError(t, Show(&buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "ctr")
	assert.Contains(t, out, "preserve-timestamps: true")
	assert.Contains(t, out, "log-level:")
	assert.NotContains(t, out, cfg.Key.String)
	assert.NotContains(t, out, "string:")
}

func TestRunRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Key.String = strings.Repeat("0f", 32)

	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	content := []byte(strings.Repeat("parallel chunks ", 100))

	require.NoError(t, os.WriteFile(file, content, 0o600))

	cfg.Files = []string{file}
	cfg.Delete = true
	require.NoError(t, Run(context.Background(), cfg))

	_, err := os.Stat(file)
	require.True(t, os.IsNotExist(err))

	cfg.Files = []string{file + ".enc"}
	cfg.Decrypt = true
	require.NoError(t, Run(context.Background(), cfg))

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestRunMissingKey(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Files = []string{"irrelevant"}

	require.ErrorIs(t, Run(context.Background(), cfg), config.ErrMissingKey)
}

func TestRunDataAndBench(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)
	cfg.Bench.Sizes = []int{1}
	cfg.Bench.Modes = []string{"ctr"}
	cfg.Bench.Threads = []int{1, 2}

	require.NoError(t, RunData(cfg, []int{1}))
	require.NoError(t, RunBench(context.Background(), cfg))

	records, err := bench.NewStore(cfg.Bench.ResultsDir, nil).Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CTR", records[0].Mode)

	_, err = os.Stat(filepath.Join(cfg.Bench.ResultsDir, "benchmarks.csv"))
	require.NoError(t, err)
}

func TestResolveSweep(t *testing.T) {
	t.Parallel()

	cfg := baseConfig(t)

	sweep, err := resolveSweep(cfg)
	require.NoError(t, err)
	assert.Equal(t, bench.DefaultSweep(), sweep)

	cfg.Bench.Modes = []string{"cbc"}

	_, err = resolveSweep(cfg)
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "sweep.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"sizes_mb": [5] // five
}`), 0o600))

	cfg.Bench.Sweep = path

	sweep, err = resolveSweep(cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, sweep.SizesMB)
}

func TestPrintOutputs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	printStats(&buf, 3, 2, 1, 2048, 1500*time.Millisecond)
	assert.Contains(t, buf.String(), "2.0 KiB")
	assert.Contains(t, buf.String(), "1.5s")

	buf.Reset()

	printRecords(&buf, []bench.Record{{
		File: "sample_1MB.bin", Bytes: bench.MiB, Mode: "CTR", Threads: 4,
		SerialTotal: 2, ParallelTotal: 1, Speedup: 2, CPUPercent: 350,
	}})
	assert.Contains(t, buf.String(), "sample_1MB.bin")
	assert.Contains(t, buf.String(), "2.00x")
	assert.Contains(t, buf.String(), "1.0 MiB/s")
}
