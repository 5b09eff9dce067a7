package proxy

import (
	"fmt"

	"github.com/hatchify/errors"
	"github.com/on-the-ground/scopeguard/shared/helper"
)

// ErrResultShape is returned when a single-result forwarding helper hits an operation with a different result count
const ErrResultShape = errors.Error("operation does not return exactly one value")

// InvokeAs forwards op through the proxy and asserts its single result to R.
// Returns a zero value and error on forwarding failure, result-count
// mismatch, or type mismatch.
func InvokeAs[R any](p *Proxy, op string, args ...any) (R, error) {
	return helper.GetTypedValueOf[R](func() (any, error) {
		out, err := p.Invoke(op, args...)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("%w: operation %q returned %d values", ErrResultShape, op, len(out))
		}
		return out[0], nil
	})
}
