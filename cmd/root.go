package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/esgf/solrsync/cmd/flags"
	"github.com/esgf/solrsync/config"
	"github.com/esgf/solrsync/config/presets"
	"github.com/esgf/solrsync/log"
)

// AddFlags adds the session flags bound to conf.
func AddFlags(flagSet *pflag.FlagSet, conf *config.Config) {
	flagSet.StringVarP(&conf.Preset, "preset", "p", conf.Preset,
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&conf.ConfigFile, "config", "c", conf.ConfigFile,
		"load configuration from file (toml, yaml or json)")
	flagSet.StringVarP(&conf.DataDirParent, "data-folder", "d", conf.DataDirParent,
		"directory for the state database and lock files")
	flagSet.StringVar(&conf.Report, "report", conf.Report,
		"write the session report as json to this file")
	flagSet.BoolVar(&conf.NoCheckpoints, "no-checkpoints", conf.NoCheckpoints,
		"do not keep checkpoints and session history")

	/** ======================== Logging Flags ========================== **/
	flagSet.StringVar(&conf.Logging.Encoder, "log-encoder", conf.Logging.Encoder,
		"log as json instead of plain text")
	flagSet.Var(flags.NewFuncValue("level", "", func(level string) error {
		if _, err := log.Level(level); err != nil {
			return err
		}
		conf.Logging.SetLevel(level)
		return nil
	}), "log-level", "log level of every module")

	/** ======================== Metrics Flags ========================== **/
	flagSet.StringVar(&conf.Metrics.Listen, "metrics-listen", conf.Metrics.Listen,
		"serve prometheus metrics on this address while the session runs")
	flagSet.StringVar(&conf.Metrics.Push.URL, "metrics-push", conf.Metrics.Push.URL,
		"push metrics to this pushgateway when the session ends")

	/** ======================== Index Flags ========================== **/
	flagSet.Var(flags.NewFuncValue("field", conf.Source.TimestampField, func(field string) error {
		conf.Source.TimestampField = field
		conf.Target.TimestampField = field
		return nil
	}), "timestamp-field", "date field compared on both indexes")
	flagSet.DurationVar(&conf.Source.RequestTimeout, "source-timeout", conf.Source.RequestTimeout,
		"timeout of a single request to the source")
	flagSet.DurationVar(&conf.Target.RequestTimeout, "target-timeout", conf.Target.RequestTimeout,
		"timeout of a single request to the target")
	flagSet.Float64Var(&conf.Source.RequestsPerSecond, "source-rps", conf.Source.RequestsPerSecond,
		"limit requests per second to the source, 0 disables the limit")

	/** ======================== Sync Flags ========================== **/
	flagSet.StringSliceVar(&conf.Sync.Cores, "core", conf.Sync.Cores,
		"cores to reconcile, in order")
	flagSet.StringVarP(&conf.Sync.Query, "query", "q", conf.Sync.Query,
		"query selecting the records to reconcile")
	flagSet.StringSliceVar(&conf.Sync.Granularities, "granularities", conf.Sync.Granularities,
		"partition ladder, coarsest first")
	flagSet.IntVar(&conf.Sync.BatchSize, "batch-size", conf.Sync.BatchSize,
		"records per page")
	flagSet.IntVar(&conf.Sync.Start, "start", conf.Sync.Start,
		"source offset of the first page copied by migrate and harvest")
	flagSet.IntVar(&conf.Sync.MaxRecords, "max-records", conf.Sync.MaxRecords,
		"maximum records copied by migrate and harvest, 0 means no limit")
	flagSet.IntVar(&conf.Sync.RecordsPerSession, "records-per-session", conf.Sync.RecordsPerSession,
		"records copied per harvest round")
	flagSet.IntVar(&conf.Sync.SourceCacheSize, "source-cache-size", conf.Sync.SourceCacheSize,
		"number of source signatures kept in memory, 0 disables the cache")
	flagSet.Var(flags.NewFuncValue("bool", "false", func(s string) error {
		conf.Sync.Resume = s == "false"
		return nil
	}), "no-resume", "ignore checkpoints of interrupted sessions")
	flagSet.Lookup("no-resume").NoOptDefVal = "true"
	flagSet.Var(flags.NewFuncValue("bool", "false", func(s string) error {
		conf.Sync.Optimize = s == "false"
		return nil
	}), "no-optimize", "do not optimize the target after the final commit")
	flagSet.Lookup("no-optimize").NoOptDefVal = "true"

	/** ======================== Fixup Flags ========================== **/
	flagSet.StringVar(&conf.Sync.Fixups.Suffix, "suffix", conf.Sync.Fixups.Suffix,
		"suffix appended to every copied record id")
	flagSet.Var(flags.NewReplacementsValue(&conf.Sync.Fixups.Replacements), "replace",
		"replacements applied to every copied string value")
}
