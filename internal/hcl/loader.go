package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/fsutil"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownFunc is returned for a task whose func is not registered.
var ErrUnknownFunc = errors.New("unknown function")

var contextType = reflect.TypeFor[context.Context]()

// Loader turns HCL job files into job declarations.
type Loader struct {
	reg *registry.Registry
}

// NewLoader creates a loader resolving task functions in reg.
func NewLoader(reg *registry.Registry) *Loader {
	return &Loader{reg: reg}
}

// Load reads every path, which may be a .hcl file or a directory searched
// recursively. Missing paths are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*job.Job, error) {
	logger := ctxlog.FromContext(ctx)

	var jobs []*job.Job
	seen := make(map[string]struct{})
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("Job path does not exist, skipping.", "path", path)
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		files := []string{path}
		if info.IsDir() {
			if files, err = fsutil.FindFilesByExtension(path, ".hcl"); err != nil {
				return nil, err
			}
		}
		for _, file := range files {
			if _, ok := seen[file]; ok {
				continue
			}
			seen[file] = struct{}{}

			loaded, err := l.LoadFile(ctx, file)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, loaded...)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(seen), "jobs", len(jobs))
	return jobs, nil
}

// LoadFile reads the jobs declared in one file.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*job.Job, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(ctx, src, path)
}

// Parse reads the jobs declared in src. filename is used in diagnostics.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) ([]*job.Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	jobs := make([]*job.Job, 0, len(root.Jobs))
	for _, jb := range root.Jobs {
		j, err := l.translateJob(jb)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		ctxlog.FromContext(ctx).Debug("Loaded job.", "job", j.Name, "tasks", len(j.Tasks), "file", filename)
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (l *Loader) translateJob(jb *jobBlock) (*job.Job, error) {
	raw := map[string]cty.Value{}
	jobCtx := map[string]any{}
	if jb.Context != nil {
		val, diags := jb.Context.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("job %q: context: %w", jb.Name, diags)
		}
		if !val.IsNull() {
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return nil, fmt.Errorf("job %q: context must be an object, got %s", jb.Name, val.Type().FriendlyName())
			}
			raw = val.AsValueMap()
		}
		for k, v := range raw {
			gv, err := toGo(v)
			if err != nil {
				return nil, fmt.Errorf("job %q: context %q: %w", jb.Name, k, err)
			}
			jobCtx[k] = gv
		}
	}

	j := &job.Job{Name: jb.Name, Context: jobCtx}
	uses := map[string][]contextUse{}
	for _, tb := range jb.Tasks {
		fn, ok := l.reg.Lookup(tb.Func)
		if !ok {
			return nil, fmt.Errorf("%s: job %q: task %q: %w %q", tb.Range, jb.Name, tb.ID, ErrUnknownFunc, tb.Func)
		}

		params := make([]job.Binding, 0, len(tb.Params))
		for _, pb := range tb.Params {
			switch {
			case pb.Context != nil && pb.LinkFrom == nil:
				params = append(params, job.Ctx(*pb.Context))
			case pb.LinkFrom != nil && pb.Context == nil:
				params = append(params, job.Link(*pb.LinkFrom))
			default:
				return nil, &job.ValidationError{
					Job:   jb.Name,
					Task:  tb.ID,
					Cause: fmt.Errorf("%w: param %q", job.ErrInvalidBinding, pb.Name),
				}
			}
		}

		if err := refineContext(jobCtx, raw, uses, tb.ID, fn, params); err != nil {
			return nil, &job.ValidationError{Job: jb.Name, Task: tb.ID, Cause: err}
		}
		j.Tasks = append(j.Tasks, job.NewTask(tb.ID, fn, params...))
	}
	return j, nil
}

// contextUse records a parameter type a context value was bound to.
type contextUse struct {
	task string
	typ  reflect.Type
}

// refineContext re-converts context values bound to typed parameters that the
// generic conversion cannot satisfy, such as a tuple bound to a []int.
// Values that still do not fit are left for the validator to report. A
// refinement that would break a binding of an earlier task is a conflict.
func refineContext(jobCtx map[string]any, raw map[string]cty.Value, uses map[string][]contextUse, taskID string, fn any, params []job.Binding) error {
	ft := reflect.TypeOf(fn)
	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		first = 1
	}
	for i, b := range params {
		if b.Kind != job.ContextRef || first+i >= ft.NumIn() {
			continue
		}
		pt := ft.In(first + i)
		cur, ok := jobCtx[b.Key]
		if !ok || cur == nil {
			continue
		}
		use := contextUse{task: taskID, typ: pt}
		if reflect.TypeOf(cur).AssignableTo(pt) {
			uses[b.Key] = append(uses[b.Key], use)
			continue
		}
		typed, err := toGoType(raw[b.Key], pt)
		if err != nil {
			continue
		}
		for _, prev := range uses[b.Key] {
			if !reflect.TypeOf(typed).AssignableTo(prev.typ) {
				return fmt.Errorf("%w: context %q is bound as %s by task %q and as %s here",
					job.ErrTypeMismatch, b.Key, prev.typ, prev.task, pt)
			}
		}
		jobCtx[b.Key] = typed
		uses[b.Key] = append(uses[b.Key], use)
	}
	return nil
}
