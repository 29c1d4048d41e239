package job

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
)

// Catalog holds validated jobs by name. The coordinator and every worker load
// the same catalog so a task can be resolved remotely from its job name and
// task id alone. It is safe for concurrent use.
type Catalog struct {
	plans *xsync.MapOf[string, *Plan]
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{plans: xsync.NewMapOf[string, *Plan]()}
}

// Add validates j and stores its plan.
func (c *Catalog) Add(j *Job) (*Plan, error) {
	plan, err := Validate(j)
	if err != nil {
		return nil, err
	}
	if _, loaded := c.plans.LoadOrStore(j.Name, plan); loaded {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateJob, j.Name)
	}
	return plan, nil
}

// Plan returns the plan registered under name.
func (c *Catalog) Plan(name string) (*Plan, error) {
	plan, ok := c.plans.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return plan, nil
}

// Spec resolves a single task of a registered job.
func (c *Catalog) Spec(jobName, taskID string) (*Spec, error) {
	plan, err := c.Plan(jobName)
	if err != nil {
		return nil, err
	}
	spec, ok := plan.Spec(taskID)
	if !ok {
		return nil, fmt.Errorf("%w: %q in job %q", ErrTaskNotFound, taskID, jobName)
	}
	return spec, nil
}

// Names returns the registered job names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.plans.Size())
	c.plans.Range(func(name string, _ *Plan) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Len returns the number of registered jobs.
func (c *Catalog) Len() int {
	return c.plans.Size()
}
