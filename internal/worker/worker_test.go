package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/transport"
)

var errDivide = errors.New("division by zero")

func testCatalog(t *testing.T) *job.Catalog {
	t.Helper()
	cat := job.NewCatalog()
	_, err := cat.Add(job.NewJob("math", map[string]any{"x": 2, "zero": 0},
		job.NewTask("A", func(n int) int { return n }, job.Ctx("x")),
		job.NewTask("B", func(a, b int) (int, error) {
			if b == 0 {
				return 0, errDivide
			}
			return a / b, nil
		}, job.Link("A"), job.Ctx("zero")),
		job.NewTask("P", func(int) int { panic("bad task") }, job.Ctx("x")),
	))
	require.NoError(t, err)
	return cat
}

func TestExecuteTask(t *testing.T) {
	w := New("tracker-0", testCatalog(t))
	assert.Equal(t, "tracker-0", w.Name())

	v, err := w.ExecuteTask(context.Background(), transport.Request{
		JobName: "math", TaskID: "B", Args: []any{6, 3}, ParamTypes: []string{"int", "int"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestExecuteTask_DecodesJSONArguments(t *testing.T) {
	w := New("tracker-0", testCatalog(t))

	v, err := w.ExecuteTask(context.Background(), transport.Request{
		JobName: "math", TaskID: "B", Args: []any{float64(8), json.RawMessage(`2`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestExecuteTask_Failures(t *testing.T) {
	w := New("tracker-0", testCatalog(t))
	ctx := context.Background()

	testCases := []struct {
		name string
		req  transport.Request
		want error
	}{
		{
			name: "body error",
			req:  transport.Request{JobName: "math", TaskID: "B", Args: []any{1, 0}},
			want: errDivide,
		},
		{
			name: "body panic",
			req:  transport.Request{JobName: "math", TaskID: "P", Args: []any{1}},
			want: job.ErrTaskPanic,
		},
		{
			name: "unknown job",
			req:  transport.Request{JobName: "nope", TaskID: "A", Args: []any{1}},
			want: job.ErrJobNotFound,
		},
		{
			name: "unknown task",
			req:  transport.Request{JobName: "math", TaskID: "Z"},
			want: job.ErrTaskNotFound,
		},
		{
			name: "signature mismatch",
			req:  transport.Request{JobName: "math", TaskID: "A", Args: []any{1}, ParamTypes: []string{"string"}},
			want: ErrSignatureMismatch,
		},
		{
			name: "argument count",
			req:  transport.Request{JobName: "math", TaskID: "A", Args: []any{1, 2}},
			want: job.ErrArgumentCount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.ExecuteTask(ctx, tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.NotErrorIs(t, err, transport.ErrConnection)
		})
	}
}

func TestExecuteTask_DelayHonoursContext(t *testing.T) {
	w := New("tracker-0", testCatalog(t), WithTaskDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := w.ExecuteTask(ctx, transport.Request{JobName: "math", TaskID: "A", Args: []any{1}})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
