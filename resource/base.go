// Package resource builds capacity-limited, bulk-level, and typed queue
// resources on top of the desim core: N-slot semaphores (plain, priority,
// and preemptive), scalar-level containers, and FIFO/filtered item
// stores. Every resource here follows the same shape: pending operations
// queue, and a shared state-change service loop repeatedly tries to
// satisfy them until a full pass makes no further progress.
package resource

// runService repeats attempt until it reports no further progress,
// implementing the "repeat until no progress" service loop shared by
// every resource family.
func runService(attempt func() bool) {
	for attempt() {
	}
}
