package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct{}

func (fakeModule) Register(r *Registry) {
	r.Register("fake.inc", func(n int) int { return n + 1 })
	r.Register("fake.join", func(ctx context.Context, parts []string, sep string) (string, error) { return "", nil })
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	fakeModule{}.Register(r)

	fn, ok := r.Lookup("fake.inc")
	require.True(t, ok)
	assert.Equal(t, 2, fn.(func(int) int)(1))

	_, ok = r.Lookup("fake.missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"fake.inc", "fake.join"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RegisterPanics(t *testing.T) {
	r := New()
	r.Register("a", func() int { return 1 })

	assert.Panics(t, func() { r.Register("a", func() int { return 2 }) })
	assert.Panics(t, func() { r.Register("b", 42) })
	assert.Panics(t, func() { r.Register("c", nil) })
}

func TestRegistry_Validate(t *testing.T) {
	r := New()
	fakeModule{}.Register(r)
	r.Register("fake.any", func(v any) any { return v })
	require.NoError(t, r.Validate(context.Background()))

	r.Register("bad.void", func(int) {})
	r.Register("bad.chan", func(c chan int) int { return 0 })
	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function 'bad.void'")
	assert.Contains(t, err.Error(), "function 'bad.chan', parameter 0")
}
