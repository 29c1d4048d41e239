package job

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/vk/jobgraph/internal/graph"
)

// Validate compiles j into a Plan. It returns a *ValidationError and no plan
// when any rule is broken. Rules are checked in this order: task ids, task
// bodies, binding shapes, LinkFrom targets and types, context values, and
// finally acyclicity.
func Validate(j *Job) (*Plan, error) {
	fail := func(task string, cause error) (*Plan, error) {
		return nil, &ValidationError{Job: j.Name, Task: task, Cause: cause}
	}

	if len(j.Tasks) == 0 {
		return fail("", ErrNoTasks)
	}

	g := graph.New[string]()
	order := make([]string, 0, len(j.Tasks))
	for _, t := range j.Tasks {
		if t.ID == "" {
			return fail("", ErrEmptyTaskID)
		}
		if err := g.AddNode(t.ID); err != nil {
			return fail(t.ID, ErrDuplicateTask)
		}
		order = append(order, t.ID)
	}

	// Signatures are inspected up front so a LinkFrom can look at the
	// result type of a task declared after it.
	specs := make(map[string]*Spec, len(j.Tasks))
	for _, t := range j.Tasks {
		spec, err := inspect(t)
		if err != nil {
			return fail(t.ID, err)
		}
		specs[t.ID] = spec
	}

	for _, t := range j.Tasks {
		spec := specs[t.ID]
		if len(t.Params) != len(spec.ParamTypes) {
			return fail(t.ID, fmt.Errorf("%w: body takes %d, %d bound", ErrParamCount, len(spec.ParamTypes), len(t.Params)))
		}
		for i, b := range t.Params {
			if b.Kind != ContextRef && b.Kind != LinkFrom {
				return fail(t.ID, fmt.Errorf("%w: parameter %d", ErrInvalidBinding, i))
			}
		}
		for _, kind := range []BindingKind{LinkFrom, ContextRef} {
			for i, b := range t.Params {
				if b.Kind != kind {
					continue
				}
				if err := checkBinding(j, specs, spec, i, b, g); err != nil {
					return fail(t.ID, err)
				}
			}
		}
	}

	if !g.IsDAG() {
		return fail("", ErrCyclicJob)
	}

	return &Plan{Job: j, Graph: g, specs: specs, order: order}, nil
}

func checkBinding(j *Job, specs map[string]*Spec, spec *Spec, i int, b Binding, g *graph.DirectedGraph[string]) error {
	pt := spec.ParamTypes[i]
	switch b.Kind {
	case LinkFrom:
		src, ok := specs[b.Key]
		if !ok {
			return fmt.Errorf("%w: parameter %d: %q", ErrUnknownTask, i, b.Key)
		}
		if !src.ResultType.AssignableTo(pt) {
			return fmt.Errorf("%w: parameter %d wants %s, task %q returns %s", ErrTypeMismatch, i, pt, b.Key, src.ResultType)
		}
		if !slices.Contains(spec.deps, b.Key) {
			if err := g.AddEdge(b.Key, spec.ID()); err != nil {
				return err
			}
			spec.deps = append(spec.deps, b.Key)
		}
	case ContextRef:
		v, ok := j.Context[b.Key]
		if !ok || v == nil {
			return fmt.Errorf("%w: parameter %d: %q", ErrMissingContext, i, b.Key)
		}
		if vt := reflect.TypeOf(v); !vt.AssignableTo(pt) {
			return fmt.Errorf("%w: parameter %d wants %s, context %q holds %s", ErrTypeMismatch, i, pt, b.Key, vt)
		}
	}
	return nil
}
