package types

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Signature summarizes the timestamps of a record set. Min, Max and Mean
// are nil when Count is zero.
//
// Two equal signatures do not prove equal content: distinct record sets can
// share the same count and aggregates.
type Signature struct {
	Count int64
	Min   *time.Time
	Max   *time.Time
	Mean  *time.Time
}

// Equal compares all four fields. Nil aggregates are equal to each other.
func (s Signature) Equal(o Signature) bool {
	return s.Count == o.Count &&
		equalTime(s.Min, o.Min) &&
		equalTime(s.Max, o.Max) &&
		equalTime(s.Mean, o.Mean)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s Signature) String() string {
	return fmt.Sprintf("count=%d min=%s max=%s mean=%s",
		s.Count, formatTime(s.Min), formatTime(s.Max), formatTime(s.Mean))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Signature) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("count", s.Count)
	enc.AddString("min", formatTime(s.Min))
	enc.AddString("max", formatTime(s.Max))
	enc.AddString("mean", formatTime(s.Mean))
	return nil
}
