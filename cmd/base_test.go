package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/esgf/solrsync/config"
	"github.com/esgf/solrsync/reconcile"
)

func parse(t *testing.T, args ...string) (*config.Config, *pflag.FlagSet) {
	t.Helper()
	conf := config.DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs, &conf)
	require.NoError(t, fs.Parse(args))
	return &conf, fs
}

func TestConfigureDefaults(t *testing.T) {
	conf, fs := parse(t)
	require.NoError(t, Configure(fs, conf))
	require.Equal(t, config.DefaultConfig(), *conf)
}

func TestConfigureFlags(t *testing.T) {
	conf, fs := parse(t,
		"--core", "files",
		"--query", "project:CMIP5",
		"--batch-size", "20",
		"--suffix", "-dup",
		"--replace", "a:b",
		"--no-optimize",
		"--timestamp-field", "timestamp",
		"--log-level", "debug",
	)
	require.NoError(t, Configure(fs, conf))
	require.Equal(t, []string{"files"}, conf.Sync.Cores)
	require.Equal(t, "project:CMIP5", conf.Sync.Query)
	require.Equal(t, 20, conf.Sync.BatchSize)
	require.Equal(t, "-dup", conf.Sync.Fixups.Suffix)
	require.Equal(t, []reconcile.Replacement{{Old: "a", New: "b"}}, conf.Sync.Fixups.Replacements)
	require.False(t, conf.Sync.Optimize)
	require.True(t, conf.Sync.Resume)
	require.Equal(t, "timestamp", conf.Source.TimestampField)
	require.Equal(t, "timestamp", conf.Target.TimestampField)
	require.Equal(t, "debug", conf.Logging.SolrLoggerLevel)
}

func TestConfigureFlagsOverrideFileAndPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solrsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
main:
  preset: fast
source:
  request-timeout: 45s
sync:
  batch-size: 1000
  cores: [datasets]
`), 0o600))

	conf, fs := parse(t, "--config", path, "--batch-size", "10", "--core", "files,aggregations")
	require.NoError(t, Configure(fs, conf))
	require.Equal(t, path, conf.ConfigFile)
	// from the preset
	require.Equal(t, []string{"day", "hour"}, conf.Sync.Granularities)
	require.False(t, conf.Sync.Optimize)
	// from the file
	require.Equal(t, 45*time.Second, conf.Source.RequestTimeout)
	// from the flags
	require.Equal(t, 10, conf.Sync.BatchSize)
	require.Equal(t, []string{"files", "aggregations"}, conf.Sync.Cores)
}

func TestConfigureUnknownPreset(t *testing.T) {
	conf, fs := parse(t, "--preset", "nope")
	require.ErrorContains(t, Configure(fs, conf), "not found")
}

func TestConfigureInvalidFlag(t *testing.T) {
	conf := config.DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs, &conf)
	require.Error(t, fs.Parse([]string{"--log-level", "chatty"}))
}
