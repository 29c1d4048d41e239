// Package coordinator is the central scheduler of a distributed run.
//
// # Why Coordinator Exists
//
// Workers are independent processes with a fixed number of slots. The
// Coordinator knows every registered worker, how many tasks each one is
// running, and which one should get the next task. It is called concurrently
// by every task goroutine of every job it runs.
//
// # Locking
//
// Two lock levels are used:
//
//   - the worker list lock guards membership and is the monitor waiters
//     block on while every slot is taken
//   - each WorkerRef has its own lock for its in-flight counter
//
// A slot is reserved while the list lock is held, so two callers can never
// pick the same last slot. The remote call itself runs with no lock held.
//
// # Failure Handling
//
//	reserve ──► call worker ──┬── ok ───────────► release, wake, return
//	   ▲                      ├── task failure ─► release, wake, return error
//	   │                      └── connection ───► drop worker, wake
//	   └──────────────────────────────────────────────┘ retry
//
// A lost worker is removed without releasing its slot since it no longer
// exists. When the last worker is removed every waiter fails with
// ErrNoWorkers.
package coordinator
