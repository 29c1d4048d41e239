package socketio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/jobgraph/internal/transport"
)

const (
	eventWorkerRegister   = "worker.register"
	eventWorkerRegistered = "worker.registered"
	eventTaskExecute      = "task.execute"
	eventTaskResult       = "task.result"
	eventJobSubmit        = "job.submit"
	eventJobTaskFinished  = "job.task_finished"
	eventJobResult        = "job.result"
)

type registerMsg struct {
	Capacity int `json:"capacity,omitempty"`
}

type registeredMsg struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Error    string `json:"error,omitempty"`
}

type executeMsg struct {
	ID      string            `json:"id"`
	Request transport.Request `json:"request"`
}

type resultMsg struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

type submitMsg struct {
	ID   string `json:"id"`
	Job  string `json:"job"`
	Mode string `json:"mode,omitempty"`
}

type finishedMsg struct {
	ID   string `json:"id"`
	Task string `json:"task"`
}

// jobResultMsg repeats the finished task ids in completion order, since
// notifications may reach the submitter after the result.
type jobResultMsg struct {
	ID       string                     `json:"id"`
	Results  map[string]json.RawMessage `json:"results,omitempty"`
	Finished []string                   `json:"finished,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

var errEmptyEvent = errors.New("event carries no payload")

// encode renders a protocol message as the string argument of an event.
// Protocol messages only hold strings, numbers and raw JSON, so marshaling
// cannot fail.
func encode(msg any) string {
	b, _ := json.Marshal(msg)
	return string(b)
}

// encodeRequest renders a task request, whose arguments are arbitrary
// values that may not be representable in JSON.
func encodeRequest(msg executeMsg) (string, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode arguments of task %q: %w", msg.Request.TaskID, err)
	}
	return string(b), nil
}

// decode reads the first event argument into msg.
func decode(args []any, msg any) error {
	if len(args) == 0 {
		return errEmptyEvent
	}
	var raw []byte
	switch a := args[0].(type) {
	case string:
		raw = []byte(a)
	case []byte:
		raw = a
	default:
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("re-encode %T: %w", a, err)
		}
		raw = b
	}
	return json.Unmarshal(raw, msg)
}
