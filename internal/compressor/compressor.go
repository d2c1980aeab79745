package compressor

// Request describes a single compress/resize job.
// A zero TargetWidth or TargetHeight leaves that axis unconstrained.
type Request struct {
	SourcePath   string
	DestPath     string
	Quality      int
	TargetWidth  int
	TargetHeight int
}

// Result describes the outcome of compressing a single file.
type Result struct {
	SourcePath     string
	DestPath       string
	OriginalSize   int64
	CompressedSize int64
	Width          int
	Height         int
	Mode           ColorMode
	Fallback       bool // encoded after conversion to truecolor
}

// SizeChange returns the signed size change in percent of the original size.
// Negative values mean the output is smaller.
func (r Result) SizeChange() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize-r.OriginalSize) / float64(r.OriginalSize) * 100
}

// Compressor defines the interface for image compression.
type Compressor interface {
	// Compress decodes the source, fits it into the target box and writes the
	// re-encoded image to the destination.
	Compress(req Request) (Result, error)
}
