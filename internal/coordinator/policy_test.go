package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func refs(specs ...[2]int) []*WorkerRef {
	out := make([]*WorkerRef, len(specs))
	for i, s := range specs {
		w := newWorkerRef(string(rune('a'+i)), s[0], nil)
		w.inFlight = s[1]
		out[i] = w
	}
	return out
}

func TestEquityPick(t *testing.T) {
	testCases := []struct {
		name    string
		workers []*WorkerRef
		want    string
	}{
		{name: "empty", workers: nil, want: ""},
		{name: "tie goes to first", workers: refs([2]int{2, 0}, [2]int{1, 0}), want: "a"},
		{name: "lowest ratio", workers: refs([2]int{2, 1}, [2]int{4, 1}), want: "b"},
		{name: "full skipped", workers: refs([2]int{1, 1}, [2]int{3, 2}), want: "b"},
		{name: "all full", workers: refs([2]int{1, 1}, [2]int{2, 2}), want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Equity.pick(tc.workers)
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tc.want, got.Name())
			}
		})
	}
}

func TestFirstFitPick(t *testing.T) {
	got := FirstFit.pick(refs([2]int{1, 1}, [2]int{4, 3}, [2]int{4, 0}))
	if assert.NotNil(t, got) {
		assert.Equal(t, "b", got.Name())
	}
	assert.Nil(t, FirstFit.pick(refs([2]int{1, 1})))
}
