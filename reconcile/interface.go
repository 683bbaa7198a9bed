package reconcile

import (
	"context"
	"time"

	"github.com/esgf/solrsync/common/types"
)

//go:generate mockgen -typed -package=reconcile -destination=./mocks.go -source=./interface.go

// index is the document index client consumed by reconciliation.
// Writes and deletes become visible only after a commit.
type index interface {
	Stats(ctx context.Context, q types.Query) (types.Signature, error)
	Fetch(ctx context.Context, q types.Query, start, rows int) (types.Page, error)
	BulkWrite(ctx context.Context, core string, records []types.Record, commit bool) error
	DeleteByQuery(ctx context.Context, q types.Query, commit bool) error
	Commit(ctx context.Context, core string) error
	Optimize(ctx context.Context, core string) error
}

// checkpointStore persists the lowest repaired leaf boundary of a walk.
type checkpointStore interface {
	Load(core, filter string) (time.Time, bool, error)
	Save(core, filter string, boundary time.Time, windows int) error
	Clear(core, filter string) error
}
