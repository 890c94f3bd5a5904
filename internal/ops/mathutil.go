package ops

import "math"

func floatPow(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
