package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(n int) int { return n }
func double(n int) int   { return n * 2 }
func sum(a, b int) int   { return a + b }

func diamond() *Job {
	return NewJob("diamond", map[string]any{"x": 2},
		NewTask("A", identity, Ctx("x")),
		NewTask("B", double, Link("A")),
		NewTask("C", sum, Link("A"), Link("B")),
	)
}

// requireValidation asserts err is a *ValidationError for task wrapping cause.
func requireValidation(t *testing.T, err error, task string, cause error) {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, task, ve.Task)
	assert.ErrorIs(t, err, cause)
}

func TestValidate_Diamond(t *testing.T) {
	plan, err := Validate(diamond())
	require.NoError(t, err)

	assert.True(t, plan.Graph.IsDAG())
	assert.Equal(t, []string{"A", "B", "C"}, plan.Order())
	assert.True(t, plan.Graph.ExistEdge("A", "B"))
	assert.True(t, plan.Graph.ExistEdge("A", "C"))
	assert.True(t, plan.Graph.ExistEdge("B", "C"))
	assert.False(t, plan.Graph.ExistEdge("B", "A"))

	c, ok := plan.Spec("C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, c.Dependencies())
	assert.Equal(t, []string{"int", "int"}, c.ParamTypeNames())
}

func TestValidate_Rules(t *testing.T) {
	var abstract func(int) int

	testCases := []struct {
		name  string
		job   *Job
		task  string
		cause error
	}{
		{
			name:  "no tasks",
			job:   NewJob("j", nil),
			cause: ErrNoTasks,
		},
		{
			name:  "empty id",
			job:   NewJob("j", nil, NewTask("", identity)),
			cause: ErrEmptyTaskID,
		},
		{
			name: "duplicate id",
			job: NewJob("j", map[string]any{"x": 1},
				NewTask("A", identity, Ctx("x")),
				NewTask("A", identity, Ctx("x")),
			),
			task:  "A",
			cause: ErrDuplicateTask,
		},
		{
			name:  "nil body",
			job:   NewJob("j", nil, NewTask("A", nil)),
			task:  "A",
			cause: ErrAbstractTask,
		},
		{
			name:  "nil func value",
			job:   NewJob("j", nil, NewTask("A", abstract, Ctx("x"))),
			task:  "A",
			cause: ErrAbstractTask,
		},
		{
			name:  "not a func",
			job:   NewJob("j", nil, NewTask("A", 42)),
			task:  "A",
			cause: ErrNotFunc,
		},
		{
			name:  "variadic",
			job:   NewJob("j", nil, NewTask("A", func(xs ...int) int { return 0 })),
			task:  "A",
			cause: ErrVariadic,
		},
		{
			name:  "void",
			job:   NewJob("j", nil, NewTask("A", func() {})),
			task:  "A",
			cause: ErrVoidResult,
		},
		{
			name:  "error only",
			job:   NewJob("j", nil, NewTask("A", func() error { return nil })),
			task:  "A",
			cause: ErrVoidResult,
		},
		{
			name:  "second result not error",
			job:   NewJob("j", nil, NewTask("A", func() (int, int) { return 0, 0 })),
			task:  "A",
			cause: ErrBadResult,
		},
		{
			name:  "too few bindings",
			job:   NewJob("j", map[string]any{"x": 1}, NewTask("A", sum, Ctx("x"))),
			task:  "A",
			cause: ErrParamCount,
		},
		{
			name:  "zero binding",
			job:   NewJob("j", nil, NewTask("A", identity, Binding{})),
			task:  "A",
			cause: ErrInvalidBinding,
		},
		{
			name:  "unknown link",
			job:   NewJob("j", nil, NewTask("A", identity, Link("Z"))),
			task:  "A",
			cause: ErrUnknownTask,
		},
		{
			name: "link type mismatch",
			job: NewJob("j", map[string]any{"s": "hi"},
				NewTask("A", func(s string) string { return s }, Ctx("s")),
				NewTask("B", identity, Link("A")),
			),
			task:  "B",
			cause: ErrTypeMismatch,
		},
		{
			name:  "missing context",
			job:   NewJob("j", map[string]any{}, NewTask("A", identity, Ctx("x"))),
			task:  "A",
			cause: ErrMissingContext,
		},
		{
			name:  "nil context value",
			job:   NewJob("j", map[string]any{"x": nil}, NewTask("A", identity, Ctx("x"))),
			task:  "A",
			cause: ErrMissingContext,
		},
		{
			name:  "context type mismatch",
			job:   NewJob("j", map[string]any{"x": "two"}, NewTask("A", identity, Ctx("x"))),
			task:  "A",
			cause: ErrTypeMismatch,
		},
		{
			name: "cycle",
			job: NewJob("j", nil,
				NewTask("A", identity, Link("B")),
				NewTask("B", identity, Link("A")),
			),
			cause: ErrCyclicJob,
		},
		{
			name:  "self link",
			job:   NewJob("j", nil, NewTask("A", identity, Link("A"))),
			cause: ErrCyclicJob,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Validate(tc.job)
			assert.Nil(t, plan)
			requireValidation(t, err, tc.task, tc.cause)
		})
	}
}

func TestValidate_BindingCheckedBeforeLinks(t *testing.T) {
	// The zero binding on parameter 1 wins over the unknown link on parameter 0.
	j := NewJob("j", nil, NewTask("A", sum, Link("Z"), Binding{}))
	_, err := Validate(j)
	requireValidation(t, err, "A", ErrInvalidBinding)
}

func TestValidate_ForwardLink(t *testing.T) {
	j := NewJob("j", map[string]any{"x": 3},
		NewTask("B", double, Link("A")),
		NewTask("A", identity, Ctx("x")),
	)
	plan, err := Validate(j)
	require.NoError(t, err)
	assert.True(t, plan.Graph.ExistEdge("A", "B"))
	assert.Equal(t, []string{"B", "A"}, plan.Order())
}

func TestValidate_RepeatedLinkSharesEdge(t *testing.T) {
	j := NewJob("j", map[string]any{"x": 3},
		NewTask("A", identity, Ctx("x")),
		NewTask("B", sum, Link("A"), Link("A")),
	)
	plan, err := Validate(j)
	require.NoError(t, err)

	b, _ := plan.Spec("B")
	assert.Equal(t, []string{"A"}, b.Dependencies())
	in, err := plan.Graph.NeighborsIn("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, in)
}

func TestValidate_InterfaceAssignable(t *testing.T) {
	j := NewJob("j", map[string]any{"e": errors.New("boom")},
		NewTask("A", func(ctx context.Context, v any) (string, error) {
			return "ok", nil
		}, Ctx("e")),
		NewTask("B", func(v any) any { return v }, Link("A")),
	)
	plan, err := Validate(j)
	require.NoError(t, err)

	a, _ := plan.Spec("A")
	assert.True(t, a.TakesContext)
	assert.True(t, a.ReturnsError)
	assert.Len(t, a.ParamTypes, 1)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Job: "j", Task: "A", Cause: ErrAbstractTask}
	assert.Equal(t, `invalid job "j": task "A": task has no body`, err.Error())

	err = &ValidationError{Job: "j", Cause: ErrCyclicJob}
	assert.Equal(t, `invalid job "j": task dependencies form a cycle`, err.Error())
}
