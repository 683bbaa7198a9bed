package presets

import (
	"time"

	"github.com/esgf/solrsync/config"
)

func init() {
	register("fast", fast())
}

// fast is meant for nodes that are resynchronized often, so divergence is
// recent and small.
func fast() config.Config {
	conf := config.DefaultConfig()
	conf.Sync.Granularities = []string{"day", "hour"}
	conf.Sync.BatchSize = 500
	conf.Sync.SourceCacheSize = 4096
	conf.Sync.Optimize = false

	conf.Source.RequestTimeout = 20 * time.Second
	conf.Target.RequestTimeout = 20 * time.Second
	return conf
}
