package job

// Task is the declaration of one unit of work.
type Task struct {
	ID string
	// Fn is the body. A nil Fn marks an abstract task.
	Fn any
	// Params holds one binding per parameter of Fn, not counting a leading
	// context.Context.
	Params []Binding
}

// Job is a complete task graph declaration with its execution context.
type Job struct {
	Name    string
	Context map[string]any
	// Tasks are kept in declaration order. Executors scan them in this order.
	Tasks []Task
}

// NewJob is a convenience constructor.
func NewJob(name string, ctx map[string]any, tasks ...Task) *Job {
	return &Job{Name: name, Context: ctx, Tasks: tasks}
}

// NewTask is a convenience constructor.
func NewTask(id string, fn any, params ...Binding) Task {
	return Task{ID: id, Fn: fn, Params: params}
}
