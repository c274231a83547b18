// Package poller keeps the admin dashboard fresh by fetching snapshots from
// the service at a fixed cadence.
//
// Failures are tolerated by design: a fetch that errors is simply skipped and
// the previous snapshot remains on display, so transient network trouble
// shows up as a momentarily stale dashboard rather than an error screen.
package poller
