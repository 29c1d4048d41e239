package job

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Spec is a validated task. It is immutable and safe for concurrent use.
type Spec struct {
	Task Task
	// ParamTypes lists the bindable parameter types in binding order.
	ParamTypes []reflect.Type
	ResultType reflect.Type
	// TakesContext is set when the body's first parameter is a context.Context.
	TakesContext bool
	// ReturnsError is set when the body returns (T, error).
	ReturnsError bool

	fn   reflect.Value
	deps []string
}

// ID returns the task id.
func (s *Spec) ID() string {
	return s.Task.ID
}

// Dependencies returns the distinct LinkFrom task ids in binding order.
func (s *Spec) Dependencies() []string {
	return s.deps
}

// ParamTypeNames returns the parameter types as strings, the form sent to
// remote workers.
func (s *Spec) ParamTypeNames() []string {
	names := make([]string, len(s.ParamTypes))
	for i, t := range s.ParamTypes {
		names[i] = t.String()
	}
	return names
}

// ResolveArgs builds the argument list of the task. Context values are read
// from jobCtx and task results through result, which must report whether the
// dependency has finished.
func (s *Spec) ResolveArgs(jobCtx map[string]any, result func(id string) (any, bool)) ([]any, error) {
	args := make([]any, len(s.Task.Params))
	for i, b := range s.Task.Params {
		switch b.Kind {
		case ContextRef:
			v, ok := jobCtx[b.Key]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrMissingContext, b.Key)
			}
			args[i] = v
		case LinkFrom:
			v, ok := result(b.Key)
			if !ok {
				return nil, fmt.Errorf("result of %q is not available", b.Key)
			}
			args[i] = v
		default:
			return nil, fmt.Errorf("%w: parameter %d", ErrInvalidBinding, i)
		}
	}
	return args, nil
}

// Call invokes the body with args. A panic in the body is returned as an
// error wrapping ErrTaskPanic.
func (s *Spec) Call(ctx context.Context, args []any) (result any, err error) {
	if len(args) != len(s.ParamTypes) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, len(s.ParamTypes), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if s.TakesContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, a := range args {
		pt := s.ParamTypes[i]
		if a == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%w: parameter %d wants %s, got %s", ErrArgumentType, i, pt, v.Type())
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()

	out := s.fn.Call(in)
	if s.ReturnsError {
		if e := out[1].Interface(); e != nil {
			return nil, e.(error)
		}
	}
	return out[0].Interface(), nil
}

// inspect reflects on a task body and fills the signature fields of a Spec.
func inspect(t Task) (*Spec, error) {
	if t.Fn == nil {
		return nil, ErrAbstractTask
	}
	fn := reflect.ValueOf(t.Fn)
	ft := fn.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: got %s", ErrNotFunc, ft)
	}
	if fn.IsNil() {
		return nil, ErrAbstractTask
	}
	if ft.IsVariadic() {
		return nil, ErrVariadic
	}

	spec := &Spec{Task: t, fn: fn}

	switch ft.NumOut() {
	case 0:
		return nil, ErrVoidResult
	case 1:
		if ft.Out(0) == errorType {
			return nil, ErrVoidResult
		}
		spec.ResultType = ft.Out(0)
	case 2:
		if ft.Out(1) != errorType {
			return nil, ErrBadResult
		}
		if ft.Out(0) == errorType {
			return nil, ErrVoidResult
		}
		spec.ResultType = ft.Out(0)
		spec.ReturnsError = true
	default:
		return nil, ErrBadResult
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		spec.TakesContext = true
		first = 1
	}
	for i := first; i < ft.NumIn(); i++ {
		spec.ParamTypes = append(spec.ParamTypes, ft.In(i))
	}
	return spec, nil
}
