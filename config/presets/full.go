package presets

import (
	"github.com/esgf/solrsync/config"
)

func init() {
	register("full", full())
}

// full also reconciles aggregations.
func full() config.Config {
	conf := config.DefaultConfig()
	conf.Sync.Cores = []string{"datasets", "files", "aggregations"}
	return conf
}
