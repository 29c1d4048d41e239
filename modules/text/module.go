// Package text provides string task functions.
package text

import (
	"errors"
	"strings"

	"github.com/vk/jobgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Concat joins a and b.
func Concat(a, b string) string { return a + b }

// Upper upper-cases s.
func Upper(s string) string { return strings.ToUpper(s) }

// Repeat repeats s n times. A negative n is an error.
func Repeat(s string, n int) (string, error) {
	if n < 0 {
		return "", errors.New("negative repeat count")
	}
	return strings.Repeat(s, n), nil
}

// Join joins parts with sep.
func Join(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("text.concat", Concat)
	r.Register("text.upper", Upper)
	r.Register("text.repeat", Repeat)
	r.Register("text.join", Join)
}
