package kernels

import "math"

// hash32 is a splitmix32-style integer hash. Both the CPU kernel and the
// GPU shader must evaluate the identical sequence of 32-bit operations so
// their Box-Muller draws agree within the pipeline's tolerance.
func hash32(x uint32) uint32 {
	x += 0x9e3779b9
	x = (x ^ (x >> 16)) * 0x21f0aaad
	x = (x ^ (x >> 15)) * 0x735a2d97
	x = x ^ (x >> 15)
	return x
}

// pixelSeed mixes pixel coordinates and the run seed into a single 32-bit
// key. Coordinates are folded rather than concatenated so it stays cheap
// on the GPU side too.
func pixelSeed(x, y int, seed uint64) uint32 {
	k := uint32(x)*374761393 + uint32(y)*668265263 + uint32(seed) + uint32(seed>>32)*2654435761
	return hash32(k)
}

// uniform01 turns a 32-bit hash into a uniform float in (0,1], avoiding
// exactly 0 so log() in Box-Muller stays finite.
func uniform01(h uint32) float32 {
	return (float32(h>>8) + 1.0) / float32(1<<24)
}

// Hash01 returns a deterministic uniform value in [0,1) for (x, y, seed),
// used by non-Gaussian per-pixel jitter such as the light leak stage's
// Organic radius perturbation.
func Hash01(x, y int, seed uint64) float32 {
	return uniform01(pixelSeed(x, y, seed)) - 1.0/float32(1<<24)
}

// BoxMuller draws one standard-normal sample deterministically from
// (x, y, seed, channel). channel lets color-mode grain draw independent
// per-channel noise from the same pixel without correlating with the
// shared luminance draw.
func BoxMuller(x, y int, seed uint64, channel uint32) float32 {
	h1 := pixelSeed(x, y, seed) ^ (channel * 0x85ebca6b)
	h2 := hash32(h1 ^ 0xc2b2ae35)
	u1 := uniform01(h1)
	u2 := uniform01(h2)
	r := float32(math.Sqrt(-2.0 * math.Log(float64(u1))))
	theta := float32(2.0 * math.Pi * float64(u2))
	return r * float32(math.Cos(float64(theta)))
}
