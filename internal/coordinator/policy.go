package coordinator

import "fmt"

// Policy selects the worker that receives the next task.
type Policy int

const (
	// Equity picks the worker with the lowest in-flight/capacity ratio.
	Equity Policy = iota
	// FirstFit picks the first registered worker with a free slot.
	FirstFit
)

func (p Policy) String() string {
	switch p {
	case Equity:
		return "equity"
	case FirstFit:
		return "first-fit"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name as used in configuration.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "equity", "":
		return Equity, nil
	case "first-fit", "firstfit":
		return FirstFit, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

// pick returns the worker to reserve, or nil when every slot is taken.
// Callers hold the list lock.
func (p Policy) pick(workers []*WorkerRef) *WorkerRef {
	switch p {
	case FirstFit:
		for _, w := range workers {
			if w.hasFreeSlot() {
				return w
			}
		}
		return nil
	default:
		var best *WorkerRef
		bestRatio := 1.0
		for _, w := range workers {
			// Strict comparison keeps the first registered worker on ties
			// and never picks a worker whose ratio is 1.
			if r := w.ratio(); r < bestRatio {
				best, bestRatio = w, r
			}
		}
		return best
	}
}
