// Package job declares jobs and their tasks and compiles them into an
// executable Plan.
//
// A Job is a named set of tasks plus a read-only context map. Each Task has a
// Go function as its body and one Binding per bindable parameter of that
// function. A binding says where the argument comes from:
//
//	job.Ctx("x")  // the context value named "x"
//	job.Link("A") // the result of task "A"
//
// Validate checks declarations in a fixed order and returns a Plan holding the
// dependency graph and one immutable Spec per task. Plans are read-only and
// are shared by every goroutine of a run.
//
// A body may take a leading context.Context, which is injected by the engine
// and is not bound. It must return a single value, optionally followed by an
// error.
package job
