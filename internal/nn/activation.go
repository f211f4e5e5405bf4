package nn

import "math"

const (
	// InitRange bounds every freshly drawn weight and bias to [-InitRange, InitRange].
	InitRange = 0.1
)

// Transfer is the squashing activation (e^{2x} - 1) / (e^{2x} + 1).
// math.Tanh evaluates the same function without overflowing for large |x|.
func Transfer(x float64) float64 {
	return math.Tanh(x)
}
