// Package verify implements the seven-layer, non-short-circuiting quality
// verifier that regression-tests a FilmStock against synthetic diagnostic
// images.
package verify

// Thresholds bundles every numeric bound the layers check against, so a
// caller can loosen them for a custom or experimental stock without
// touching the layer implementations.
type Thresholds struct {
	SpectralPeakToleranceNM   float32
	SpectralFWHMToleranceNM   float32
	SpectralOverlapMax        float32
	DMinLow, DMinHigh         float32
	DMaxMinColor              float32
	GammaTolerance            float32
	LatitudeMinStops          float32
	InterLayerInhibitionMax   float32
	NeutralDeltaMax           float32
	MaskBiasLow, MaskBiasHigh float32
	DeltaE2000Max             float64
	GrainRMSTolerance         float32
	GrainSlopeLow, GrainSlopeHigh float64
	ReciprocityDensityDriftMax float32
	ReciprocityDeltaEMax       float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SpectralPeakToleranceNM: 5,
		SpectralFWHMToleranceNM: 15,
		SpectralOverlapMax:      0.15,
		DMinLow:                 0.12,
		DMinHigh:                0.18,
		DMaxMinColor:            2.8,
		GammaTolerance:          0.05,
		LatitudeMinStops:        2.8,
		InterLayerInhibitionMax: 0.08,
		NeutralDeltaMax:         0.05,
		MaskBiasLow:             0.65,
		MaskBiasHigh:            0.75,
		DeltaE2000Max:           8.0,
		GrainRMSTolerance:       0.15,
		GrainSlopeLow:           1.5,
		GrainSlopeHigh:          2.5,
		ReciprocityDensityDriftMax: 0.15,
		ReciprocityDeltaEMax:       3.0,
	}
}
