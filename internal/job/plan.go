package job

import "github.com/vk/jobgraph/internal/graph"

// Plan is a validated job ready to be executed.
type Plan struct {
	Job   *Job
	Graph *graph.DirectedGraph[string]
	specs map[string]*Spec
	order []string
}

// Spec returns the validated task with the given id.
func (p *Plan) Spec(id string) (*Spec, bool) {
	s, ok := p.specs[id]
	return s, ok
}

// Order returns the task ids in declaration order.
func (p *Plan) Order() []string {
	return append([]string(nil), p.order...)
}

// Len returns the number of tasks.
func (p *Plan) Len() int {
	return len(p.order)
}

// Ready reports whether every LinkFrom dependency of id has finished
// according to done.
func (p *Plan) Ready(id string, done func(id string) bool) bool {
	for _, dep := range p.specs[id].deps {
		if !done(dep) {
			return false
		}
	}
	return true
}
