package reconcile

import (
	"errors"
	"fmt"

	"github.com/esgf/solrsync/common/types"
)

// Config is the session configuration. It is passed to New and not changed
// afterwards.
type Config struct {
	// Cores are reconciled one after another in this order.
	Cores []string `mapstructure:"cores"`
	// Query selects the records to reconcile. It is passed to the index unmodified.
	Query string `mapstructure:"query"`
	// Granularities is the partition ladder, coarsest first.
	Granularities []string `mapstructure:"granularities"`
	// BatchSize is the number of records per page.
	BatchSize int `mapstructure:"batch-size"`
	// Start is the source offset of the first page copied by migrate and harvest.
	Start int `mapstructure:"start"`
	// MaxRecords caps the records read by migrate and harvest. Sync always
	// copies whole windows.
	MaxRecords int `mapstructure:"max-records"`
	// RecordsPerSession is the size of one harvest round.
	RecordsPerSession int `mapstructure:"records-per-session"`
	// Resume skips windows repaired by an interrupted session.
	Resume bool `mapstructure:"resume"`
	// Optimize requests an optimize after the final commit.
	Optimize bool `mapstructure:"optimize"`
	// SourceCacheSize caches source signatures of re-checked windows. Zero disables it.
	SourceCacheSize int `mapstructure:"source-cache-size"`

	Fixups FixupConfig `mapstructure:"fixups"`
}

func DefaultConfig() Config {
	return Config{
		Cores:             []string{"datasets", "files"},
		Query:             types.DefaultFilter,
		Granularities:     []string{"month", "day", "hour"},
		BatchSize:         100,
		RecordsPerSession: 100_000,
		Resume:            true,
		Optimize:          true,
		Fixups:            DefaultFixupConfig(),
	}
}

// Validate checks the values that can not be used as is.
func (c Config) Validate() error {
	var errs []error
	if len(c.Cores) == 0 {
		errs = append(errs, errors.New("no cores configured"))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", c.BatchSize))
	}
	if c.Start < 0 {
		errs = append(errs, fmt.Errorf("start must not be negative, got %d", c.Start))
	}
	if c.MaxRecords < 0 {
		errs = append(errs, fmt.Errorf("max records must not be negative, got %d", c.MaxRecords))
	}
	if c.RecordsPerSession < 0 {
		errs = append(errs, fmt.Errorf("records per session must not be negative, got %d", c.RecordsPerSession))
	}
	if c.SourceCacheSize < 0 {
		errs = append(errs, fmt.Errorf("source cache size must not be negative, got %d", c.SourceCacheSize))
	}
	if _, err := types.ParseLadder(c.Granularities); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
