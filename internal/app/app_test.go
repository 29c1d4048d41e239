package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jobgraph/internal/config"
	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/job"
	"github.com/vk/jobgraph/internal/registry"
	"github.com/vk/jobgraph/internal/testutil"
	"github.com/vk/jobgraph/internal/transport"
	"github.com/vk/jobgraph/internal/transport/socketio"
	"github.com/vk/jobgraph/internal/worker"
)

const diamondHCL = `
job "diamond" {
  context = { x = 2 }

  task "A" {
    func = "arith.identity"
    param "n" { context = "x" }
  }

  task "B" {
    func = "arith.double"
    param "n" { link_from = "A" }
  }

  task "C" {
    func = "arith.sum"
    param "a" { link_from = "A" }
    param "b" { link_from = "B" }
  }
}
`

const failingHCL = `
job "broken" {
  context = { a = 1, b = 0 }

  task "A" {
    func = "arith.divide"
    param "a" { context = "a" }
    param "b" { context = "b" }
  }
}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	return cfg
}

type voidModule struct{}

func (voidModule) Register(r *registry.Registry) {
	r.Register("void.nothing", func(int) {})
}

func TestNewApp_CoreModules(t *testing.T) {
	a, logs := SetupAppTest(t, testConfig(t), nil)
	assert.Contains(t, a.Registry().Names(), "arith.divide")
	assert.Contains(t, a.Registry().Names(), "text.join")
	assert.Contains(t, logs.String(), "Registry validation passed.")
}

func TestNewApp_InvalidModulePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, testConfig(t), voidModule{})
	})
}

func TestRun_Modes(t *testing.T) {
	want := map[string]map[string]any{
		"diamond": {"A": 2, "B": 4, "C": 6},
	}
	for _, mode := range []string{ModeSequential, ModeParallel} {
		t.Run(mode, func(t *testing.T) {
			a, _ := SetupAppTest(t, testConfig(t), map[string]string{"diamond.hcl": diamondHCL})
			got, err := a.Run(context.Background(), mode, a.config.JobsDir)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_InvalidMode(t *testing.T) {
	a, _ := SetupAppTest(t, testConfig(t), nil)
	_, err := a.Run(context.Background(), "distributed", a.config.JobsDir)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestRun_NoJobs(t *testing.T) {
	a, logs := SetupAppTest(t, testConfig(t), nil)
	got, err := a.Run(context.Background(), ModeParallel, a.config.JobsDir)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, logs.String(), "No jobs found")
}

func TestRun_TaskFailure(t *testing.T) {
	a, _ := SetupAppTest(t, testConfig(t), map[string]string{"broken.hcl": failingHCL})
	_, err := a.Run(context.Background(), ModeSequential, a.config.JobsDir)
	assert.ErrorContains(t, err, `job "broken" failed`)
	assert.ErrorContains(t, err, "division by zero")
}

func TestWebserver_Endpoints(t *testing.T) {
	a, _ := SetupAppTest(t, testConfig(t), nil)
	dir := transport.NewLocalDirectory()
	dir.Bind("tracker-0", worker.New("tracker-0", job.NewCatalog()))
	coord := coordinator.New(dir)
	srv := socketio.NewServer(context.Background())
	srv.Attach(coord)
	require.NoError(t, coord.RegisterWorkerWithCapacity(context.Background(), "tracker-0", 2))

	hs := httptest.NewServer(a.coordinatorMux(srv, coord))
	defer hs.Close()

	resp, err := http.Get(hs.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(hs.URL + "/workers")
	require.NoError(t, err)
	defer resp.Body.Close()
	var workers []coordinator.WorkerStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workers))
	assert.Equal(t, []coordinator.WorkerStatus{{Name: "tracker-0", Capacity: 2}}, workers)
}

func TestCoordinatorWorkerSubmit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-process round trip in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	files := map[string]string{"diamond.hcl": diamondHCL}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + ln.Addr().String()

	coordApp, _ := SetupAppTest(t, testConfig(t), files)
	coordDone := make(chan error, 1)
	go func() { coordDone <- coordApp.ServeCoordinator(ctx, ln) }()

	workerCfg := testConfig(t)
	workerCfg.CoordinatorURL = url
	workerCfg.WorkerCapacity = 2
	workerApp, _ := SetupAppTest(t, workerCfg, files)
	registered := make(chan string, 1)
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- workerApp.ServeWorker(workerCtx, func(name string, _ int) { registered <- name })
	}()

	select {
	case name := <-registered:
		assert.Equal(t, "tracker-0", name)
	case <-ctx.Done():
		t.Fatal("worker never registered")
	}

	submitCfg := testConfig(t)
	submitCfg.CoordinatorURL = url
	submitApp, _ := SetupAppTest(t, submitCfg, nil)

	for _, mode := range []string{"distributed", "central"} {
		results, err := submitApp.Submit(ctx, "diamond", mode)
		require.NoError(t, err, mode)
		var c int
		require.NoError(t, json.Unmarshal(results["C"], &c))
		assert.Equal(t, 6, c, mode)
	}

	stopWorker()
	assert.NoError(t, <-workerDone)
	cancel()
	assert.NoError(t, <-coordDone)
}

const sleepersHCL = `
job "sleepers" {
  context = { a = "a", b = "b" }

  task "A" {
    func = "test.sleep"
    param "label" { context = "a" }
  }

  task "B" {
    func = "test.sleep"
    param "label" { context = "b" }
  }
}
`

func TestRun_ParallelOverlapsIndependentTasks(t *testing.T) {
	tests := []struct {
		mode        string
		wantOverlap bool
	}{
		{ModeSequential, false},
		{ModeParallel, true},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			sleeper := testutil.NewMockSleeperModule(nil, 100*time.Millisecond)
			a, _ := SetupAppTest(t, testConfig(t), map[string]string{"sleepers.hcl": sleepersHCL}, sleeper)

			got, err := a.Run(context.Background(), tc.mode, a.config.JobsDir)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"A": "a", "B": "b"}, got["sleepers"])

			times := sleeper.ExecutionTimes()
			require.Len(t, times, 2)
			assert.Equal(t, tc.wantOverlap, times["a"].Overlaps(times["b"]))
		})
	}
}
