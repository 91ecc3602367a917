package stringsconv

import "time"

// Table is a decoded .strings resource: string key -> localized value.
type Table map[string]string

type Config struct {
	// UnsortedMarker is the directive line written before keys the master file does not know.
	UnsortedMarker string
	// Observer receives per-line diagnostics. Optional.
	Observer Observer
	NowFn    func() time.Time
}

// Report summarizes one merge run.
type Report struct {
	Merged         int
	MissingKeys    []string
	MalformedLines []int
	Unsorted       []string
	Issues         []error // *LineError, in master order
	StartedAt      time.Time
	Duration       time.Duration
}

// Clean reports whether the run produced no warnings or errors.
func (r Report) Clean() bool {
	return len(r.MissingKeys) == 0 && len(r.MalformedLines) == 0
}
