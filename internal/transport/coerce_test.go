package transport

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	intType := reflect.TypeFor[int]()
	anyType := reflect.TypeFor[any]()

	testCases := []struct {
		name string
		in   any
		typ  reflect.Type
		want any
	}{
		{name: "assignable", in: 4, typ: intType, want: 4},
		{name: "json float", in: float64(6), typ: intType, want: 6},
		{name: "raw message", in: json.RawMessage(`12`), typ: intType, want: 12},
		{name: "nil", in: nil, typ: intType, want: 0},
		{name: "interface keeps value", in: float64(1.5), typ: anyType, want: 1.5},
		{name: "slice", in: []any{float64(1), float64(2)}, typ: reflect.TypeFor[[]int](), want: []int{1, 2}},
		{name: "string", in: json.RawMessage(`"hi"`), typ: reflect.TypeFor[string](), want: "hi"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.in, tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerce_Mismatch(t *testing.T) {
	_, err := Coerce("text", reflect.TypeFor[int]())
	require.Error(t, err)

	_, err = Coerce(float64(1.5), reflect.TypeFor[int]())
	require.Error(t, err)
}
