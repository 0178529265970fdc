// Package executor implements the cooperative poll/wake task system that
// drives the host side of the promise bridge.
//
// A Task suspends by returning false from Poll after arranging for its
// Waker to fire; the executor re-polls it on the next wake. All polling
// happens on the single Run goroutine, so tasks never race each other. The
// executor has its own run-queue lock, independent of the engine exclusivity
// lock, which keeps wakes originating from inside engine callbacks safe at
// any point of the run loop.
//
// Future bridges goroutine-based computations into this model: Go spawns
// the work on an ordinary goroutine and exposes its completion through the
// same poll/wake contract.
package executor
