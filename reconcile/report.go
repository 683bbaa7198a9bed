package reconcile

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/esgf/solrsync/common/types"
)

// CoreReport is the outcome of one core.
type CoreReport struct {
	Core            string          `json:"core"`
	WindowsExamined int             `json:"windowsExamined"`
	WindowsRepaired int             `json:"windowsRepaired"`
	Divergent       int             `json:"divergent,omitempty"`
	Migrated        int             `json:"migrated"`
	Skipped         int             `json:"skipped"`
	InSync          bool            `json:"inSync"`
	Resumed         bool            `json:"resumed,omitempty"`
	Source          types.Signature `json:"-"`
	Target          types.Signature `json:"-"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *CoreReport) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("core", r.Core)
	enc.AddInt("windows_examined", r.WindowsExamined)
	enc.AddInt("windows_repaired", r.WindowsRepaired)
	enc.AddInt("migrated", r.Migrated)
	enc.AddInt("skipped", r.Skipped)
	enc.AddBool("in_sync", r.InSync)
	return nil
}

// Report is the outcome of one session.
type Report struct {
	ID       string        `json:"id"`
	Mode     string        `json:"mode"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Dirty    bool          `json:"dirty"`
	Cores    []*CoreReport `json:"cores"`
	Error    string        `json:"error,omitempty"`
}

// Core returns the report of the named core or nil.
func (r *Report) Core(name string) *CoreReport {
	for _, c := range r.Cores {
		if c.Core == name {
			return c
		}
	}
	return nil
}

// Migrated sums migrated records over all cores.
func (r *Report) Migrated() int {
	total := 0
	for _, c := range r.Cores {
		total += c.Migrated
	}
	return total
}

// Skipped sums skipped records over all cores.
func (r *Report) Skipped() int {
	total := 0
	for _, c := range r.Cores {
		total += c.Skipped
	}
	return total
}

// InSync reports whether every core ended in sync.
func (r *Report) InSync() bool {
	for _, c := range r.Cores {
		if !c.InSync {
			return false
		}
	}
	return true
}
