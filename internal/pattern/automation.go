package pattern

import "math"

// FilterSweep returns one cutoff value per bar, moving linearly from start to
// end. Values are clamped to the 0..127 controller range.
func FilterSweep(bars, start, end int) []int {
	if bars <= 0 {
		return nil
	}
	start, end = clamp(start, 0, 127), clamp(end, 0, 127)
	out := make([]int, bars)
	for i := range out {
		out[i] = int(math.Round(lerp(float64(start), float64(end), i, bars)))
	}
	return out
}

// VolumeRamp returns one gain multiplier per bar, moving linearly from start
// to end.
func VolumeRamp(bars int, start, end float64) []float64 {
	if bars <= 0 {
		return nil
	}
	out := make([]float64, bars)
	for i := range out {
		out[i] = lerp(start, end, i, bars)
	}
	return out
}

// lerp returns the i-th of n evenly spaced points from a to b. A single point
// is a.
func lerp(a, b float64, i, n int) float64 {
	if n <= 1 {
		return a
	}
	return a + (b-a)*float64(i)/float64(n-1)
}
