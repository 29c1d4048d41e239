package transport

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Coerce converts v to a value of type t. Values already assignable pass
// through. Raw JSON and the generic shapes produced by encoding/json
// (float64, []any, map[string]any) are re-decoded into t.
func Coerce(v any, t reflect.Type) (any, error) {
	if v == nil {
		return reflect.Zero(t).Interface(), nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return decodeInto(raw, t)
	}
	if reflect.TypeOf(v).AssignableTo(t) {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("coerce %T to %s: %w", v, t, err)
	}
	return decodeInto(raw, t)
}

func decodeInto(raw []byte, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return ptr.Elem().Interface(), nil
}
