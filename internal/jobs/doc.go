// Package jobs implements the background job protocol every pipeline stage
// runs under: asynchronous start, monotonic integer progress, cooperative
// checkpoint cancellation, and an exactly-once terminal outcome followed by a
// done signal so callers can release resources deterministically.
package jobs
