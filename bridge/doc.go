// Package bridge connects the engine's cooperative promise model with the
// host's poll/wake task model, in both directions.
//
// Awaitable turns an engine promise into a host-pollable value: two
// host-callable functions are subscribed through the promise's then entry
// point, and whichever fires writes into a shared completion cell that the
// host polls. The cell has its own lock; neither side needs the engine
// exclusivity lock to touch it.
//
// NewPromise goes the other way: it creates an engine promise triple, spawns
// the host computation on the executor, and settles the promise once the
// outcome is in. The resolve/reject functions survive the gap as persistent
// handles; the engine lock is re-acquired only around the final settlement,
// never while the computation is awaited.
//
// Settlement goes through one of two strategies: Immediate invokes the
// function inline in the re-entered engine context, Deferred enqueues it on
// the engine job queue so resolutions become script-visible in job order.
package bridge
