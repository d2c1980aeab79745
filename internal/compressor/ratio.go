package compressor

import "math"

// FitRatio returns the uniform scale factor that fits a w0 x h0 image into
// the target box. Non-positive targets are unconstrained; with no constraint
// the ratio is 1.
func FitRatio(w0, h0, targetWidth, targetHeight int) float64 {
	switch {
	case targetWidth > 0 && targetHeight > 0:
		return math.Min(float64(targetWidth)/float64(w0), float64(targetHeight)/float64(h0))
	case targetWidth > 0:
		return float64(targetWidth) / float64(w0)
	case targetHeight > 0:
		return float64(targetHeight) / float64(h0)
	default:
		return 1.0
	}
}

// FitSize returns the output dimensions for a w0 x h0 image. The image is
// never upscaled; when the ratio is below 1 both axes are scaled by it and
// rounded, with a minimum of one pixel.
func FitSize(w0, h0, targetWidth, targetHeight int) (int, int) {
	if w0 <= 0 || h0 <= 0 {
		return w0, h0
	}
	ratio := FitRatio(w0, h0, targetWidth, targetHeight)
	if ratio >= 1.0 {
		return w0, h0
	}
	w := int(math.Max(1, math.Round(float64(w0)*ratio)))
	h := int(math.Max(1, math.Round(float64(h0)*ratio)))
	return w, h
}
