// Package ports defines the interfaces the core and the domain packages
// expect from adapters. Implementations live in adapters/.
package ports

import "time"

// IDGenerator generates the identifiers of database loads.
type IDGenerator interface {
	New() string
}

// ReloadRecorder records the outcome of database reloads.
type ReloadRecorder interface {
	RecordReload(at time.Time, err error)
}
