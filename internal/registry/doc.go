// Package registry maps the function names used in job files
// (e.g. "arith.double") to the compiled Go functions that implement them.
//
// Modules register their functions at startup. The coordinator and every
// worker build the same registry, which is what lets a worker run a task it
// only knows by job name and task id. Validate checks that every registered
// function is a usable task body and that its parameters can be fed from HCL
// values.
package registry
