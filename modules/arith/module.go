// Package arith provides integer task functions.
package arith

import (
	"errors"

	"github.com/vk/jobgraph/internal/registry"
)

// ErrDivisionByZero is returned by Divide.
var ErrDivisionByZero = errors.New("division by zero")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Identity returns n unchanged.
func Identity(n int) int { return n }

// Double returns 2n.
func Double(n int) int { return n * 2 }

// Sum adds a and b.
func Sum(a, b int) int { return a + b }

// Product multiplies a and b.
func Product(a, b int) int { return a * b }

// Divide returns a / b and fails when b is zero.
func Divide(a, b int) (int, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Total adds every element of xs.
func Total(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("arith.identity", Identity)
	r.Register("arith.double", Double)
	r.Register("arith.sum", Sum)
	r.Register("arith.product", Product)
	r.Register("arith.divide", Divide)
	r.Register("arith.total", Total)
}
