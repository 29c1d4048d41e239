// Package scheduler tracks which tasks of a running job are ready.
//
// # Why Scheduler Exists
//
// Both parallel engines (local and distributed) share the same readiness
// problem: many goroutines finish tasks at unpredictable times, and the loop
// dispatching new tasks must block until at least one pending task has all of
// its LinkFrom dependencies satisfied. The Tracker owns that state so the
// engines only decide how a task is invoked.
//
// # How It Works
//
// A Tracker guards three pieces of state with a single mutex:
//
//   - pending: task ids not yet handed out, in declaration order
//   - results: outputs of finished tasks
//   - errors:  failures recorded by task runners
//
// Next scans pending for the first ready task. When none is ready it waits on
// a condition variable. RecordResult and RecordError always Broadcast, because
// one finished task may unblock several others, and an error must wake every
// waiter so it can observe the abort.
//
//	Next() ──► scan pending ──► found? ──► remove, return id
//	               ▲               │ no
//	               │               ▼
//	               └──────── cond.Wait() ◄── Broadcast from Record*
//
// # Cancellation
//
// Cancelling the context passed to Next is recorded as an error, which aborts
// the run exactly like a task failure.
package scheduler
