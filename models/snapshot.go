package models

// ProcessSnapshot is one live process as observed during a single poll
// tick. Fields that could not be read are left at their zero value; a
// snapshot is never mutated after capture.
type ProcessSnapshot struct {
	Name          string // process name, lowercased
	ExePath       string // full executable path, empty when unreadable
	ResidentBytes uint64 // resident set size, zero when unreadable
	PID           int32
}

// GameIdentity is the result of classifying a snapshot: a stable
// lowercase key (executable basename or configured alias) plus the
// display name used in persisted records.
type GameIdentity struct {
	Key         string
	DisplayName string
}
