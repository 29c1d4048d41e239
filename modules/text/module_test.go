package text

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jobgraph/internal/registry"
)

func TestFunctions(t *testing.T) {
	assert.Equal(t, "foobar", Concat("foo", "bar"))
	assert.Equal(t, "LOUD", Upper("loud"))
	assert.Equal(t, "a-b-c", Join([]string{"a", "b", "c"}, "-"))

	s, err := Repeat("ab", 3)
	require.NoError(t, err)
	assert.Equal(t, "ababab", s)

	_, err = Repeat("ab", -1)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	assert.Equal(t, []string{"text.concat", "text.join", "text.repeat", "text.upper"}, r.Names())
	require.NoError(t, r.Validate(context.Background()))
}
