package presets

import (
	"github.com/esgf/solrsync/config"
)

func init() {
	register("standard", standard())
}

// standard reconciles the dataset and file cores.
func standard() config.Config {
	return config.DefaultConfig()
}
