package compressor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// encodeFunc writes img in the given format.
type encodeFunc func(w io.Writer, img image.Image, format imaging.Format, quality int) error

// DefaultCompressor is the default implementation of the Compressor interface.
type DefaultCompressor struct {
	encode encodeFunc
}

// NewDefaultCompressor creates a new DefaultCompressor instance.
func NewDefaultCompressor() *DefaultCompressor {
	return &DefaultCompressor{encode: encodeImage}
}

// Compress reads req.SourcePath, downscales it to fit the target box when
// needed and writes it to req.DestPath in the format implied by the
// destination extension. Nothing is left at req.DestPath on failure.
func (c *DefaultCompressor) Compress(req Request) (Result, error) {
	res := Result{
		SourcePath: req.SourcePath,
		DestPath:   req.DestPath,
	}

	f, err := os.Open(req.SourcePath)
	if err != nil {
		return res, ioError("open", req.SourcePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, ioError("stat", req.SourcePath, err)
	}
	res.OriginalSize = info.Size()

	img, err := imaging.Decode(f)
	if err != nil {
		return res, decodeError("decode", req.SourcePath, err)
	}

	format, err := imaging.FormatFromFilename(req.DestPath)
	if err != nil {
		return res, encodeError("format", req.DestPath, err)
	}

	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), req.TargetWidth, req.TargetHeight)
	if w != b.Dx() || h != b.Dy() {
		img = withMode(imaging.Resize(img, w, h, imaging.Lanczos), ColorModeOf(img))
	}

	data, img, fallback, err := c.encodeWithFallback(img, format, req.Quality)
	if err != nil {
		return res, encodeError("encode", req.DestPath, err)
	}

	if err := writeFileAtomic(req.DestPath, data); err != nil {
		return res, ioError("write", req.DestPath, err)
	}

	out, err := os.Stat(req.DestPath)
	if err != nil {
		return res, ioError("stat", req.DestPath, err)
	}

	res.CompressedSize = out.Size()
	res.Width = w
	res.Height = h
	res.Mode = ColorModeOf(img)
	res.Fallback = fallback
	return res, nil
}

// encodeWithFallback encodes img into memory. If the encoder rejects the color
// mode, img is converted to truecolor and encoded once more. Any other error
// is returned as is.
func (c *DefaultCompressor) encodeWithFallback(img image.Image, format imaging.Format, quality int) ([]byte, image.Image, bool, error) {
	var buf bytes.Buffer
	err := c.encode(&buf, img, format, quality)
	if err == nil {
		return buf.Bytes(), img, false, nil
	}
	if !errors.Is(err, ErrUnsupportedColorMode) {
		return nil, img, false, err
	}

	rgb := toTruecolor(img)
	buf.Reset()
	if err := c.encode(&buf, rgb, format, quality); err != nil {
		return nil, rgb, true, fmt.Errorf("retry as %s: %w", ModeRGB, err)
	}
	return buf.Bytes(), rgb, true, nil
}

// encodeImage encodes img with imaging, refusing color modes the target
// format cannot store.
func encodeImage(w io.Writer, img image.Image, format imaging.Format, quality int) error {
	if format == imaging.JPEG {
		if mode := ColorModeOf(img); !jpegModes[mode] {
			return fmt.Errorf("cannot write mode %s as %s: %w", mode, format, ErrUnsupportedColorMode)
		}
	}
	if rgb, ok := img.(rgbImage); ok {
		img = rgb.NRGBA
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
