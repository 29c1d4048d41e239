package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/jobgraph/internal/ctxlog"
	"github.com/vk/jobgraph/internal/job"
	"github.com/zclconf/go-cty/cty/gocty"
)

var contextType = reflect.TypeFor[context.Context]()

// Validate checks every registered function. Each must be accepted as a
// task body, and each of its parameters must have a cty equivalent so it can
// be bound to a job file context value.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Names() {
		fn := r.funcs[name]

		// Validating a one-task probe job reuses the body rules of the
		// validator. Arity errors are expected since no bindings are given.
		probe := job.NewJob("registry", nil, job.NewTask(name, fn))
		if _, err := job.Validate(probe); err != nil && !isArityError(err) {
			errs = append(errs, fmt.Sprintf("function '%s': %v", name, unwrapCause(err)))
			continue
		}

		ft := reflect.TypeOf(fn)
		for i := range ft.NumIn() {
			pt := ft.In(i)
			if i == 0 && pt == contextType {
				continue
			}
			if pt.Kind() == reflect.Interface {
				logger.Debug("Function takes an interface parameter, which disables static type checking.", "function", name, "parameter", i)
				continue
			}
			if _, err := gocty.ImpliedType(reflect.Zero(pt).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("function '%s', parameter %d: no cty type for %s: %v", name, i, pt, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func isArityError(err error) bool {
	return errors.Is(err, job.ErrParamCount)
}

func unwrapCause(err error) error {
	var ve *job.ValidationError
	if errors.As(err, &ve) {
		return ve.Cause
	}
	return err
}
