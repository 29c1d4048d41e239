// Package graph provides the directed graph used to hold a job's task
// dependencies.
//
// # Why Graph Package Exists
//
// Every execution strategy needs the same two questions answered about a job:
// "which tasks must finish before this one?" and "is there any cycle?". The
// DirectedGraph answers both without knowing anything about tasks, so the
// validator can build it once and every executor can read it concurrently.
//
// # Structure
//
// Nodes are stored by value and must be unique. Each node keeps its outgoing
// and incoming neighbors in insertion order:
//
//	A ──► B ──► C
//	│           ▲
//	└───────────┘
//
//	NeighborsOut(A) = [B, C]
//	NeighborsIn(C)  = [B, A]
//
// # Reachability
//
// Accessible walks outgoing edges depth-first and is recomputed on every call.
// IsDAG reports false as soon as some node appears in its own accessible set.
// Both are quadratic in the worst case, which is fine for the size of job
// graphs this is meant for.
//
// # Thread-Safety
//
// A DirectedGraph is not synchronized. It is written once while a job is
// validated and only read afterwards, so concurrent readers need no locking.
package graph
