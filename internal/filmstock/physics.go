package filmstock

import "math"

// TransmissionAtZeroDensity is T = 10^0.
const TransmissionAtZeroDensity = 1.0

// DensityToTransmission converts optical density D to transmission T=10^-D.
func DensityToTransmission(density float32) float32 {
	return float32(math.Pow(10, -float64(density)))
}

// TransmissionToDensity converts transmission T to optical density
// D=-log10(T), capping at 5.0 for T<=0 rather than returning +Inf.
func TransmissionToDensity(transmission float32) float32 {
	if transmission <= 0 {
		return 5.0
	}
	return float32(-math.Log10(float64(transmission)))
}

// erf is the Abramowitz & Stegun 7.1.26 approximation, max error 1.5e-7,
// used by the erf-family H-D curve.
func erf(x float32) float32 {
	const a1 = 0.2548296
	const a2 = -0.28449672
	const a3 = 1.4214138
	const a4 = -1.4531521
	const a5 = 1.0614054
	const p = 0.3275911

	sign := float32(1.0)
	if x < 0 {
		sign = -1.0
	}
	x = float32(math.Abs(float64(x)))
	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*float32(math.Exp(float64(-x*x)))
	return sign * y
}

// shoulderSoften compresses density above shoulderPoint to model the
// saturation of silver halide crystals near D-max.
func shoulderSoften(density, shoulderPoint float32) float32 {
	if density <= shoulderPoint {
		return density
	}
	excess := density - shoulderPoint
	return density - (excess*excess)/(shoulderPoint+excess)
}

// DyeSelfAbsorption nudges transmission for densities above 1.5, where
// Beer's law starts to deviate for real dye layers.
func DyeSelfAbsorption(density, transmission float32) float32 {
	if density <= 1.5 {
		return transmission
	}
	correction := 1.0 + (density-1.5)*0.02
	if correction < 0.97 {
		correction = 0.97
	}
	if correction > 1.03 {
		correction = 1.03
	}
	return transmission * correction
}
