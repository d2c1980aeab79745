package compressor

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ColorMode is the pixel layout of an in-memory image.
type ColorMode int

const (
	ModeRGB ColorMode = iota
	ModeGray
	ModeCMYK
	ModeRGBA
	ModePalette
)

// String returns the conventional short name of the mode.
func (m ColorMode) String() string {
	switch m {
	case ModeRGB:
		return "RGB"
	case ModeGray:
		return "L"
	case ModeCMYK:
		return "CMYK"
	case ModeRGBA:
		return "RGBA"
	case ModePalette:
		return "P"
	default:
		return "unknown"
	}
}

// rgbImage is an NRGBA buffer with every alpha byte at 0xff, standing in for
// a truecolor image without an alpha channel.
type rgbImage struct {
	*image.NRGBA
}

// ColorModeOf classifies img by its decoded layout. NRGBA buffers carry an
// alpha channel and are RGBA even when every pixel is opaque; the PNG decoder
// returns them for color types with alpha. Premultiplied RGBA buffers, which
// it returns for truecolor images without alpha, are RGB when opaque.
func ColorModeOf(img image.Image) ColorMode {
	switch m := img.(type) {
	case rgbImage:
		return ModeRGB
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.YCbCr:
		return ModeRGB
	case *image.CMYK:
		return ModeCMYK
	case *image.Paletted:
		return ModePalette
	case *image.NRGBA, *image.NRGBA64:
		return ModeRGBA
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return ModeRGB
		}
	}
	return ModeRGBA
}

// withMode tags a resampled image with the mode of its source. Resampling
// always yields NRGBA; CMYK sources come back as RGB.
func withMode(img *image.NRGBA, mode ColorMode) image.Image {
	switch mode {
	case ModeRGB, ModeCMYK:
		return rgbImage{img}
	case ModeGray:
		g := image.NewGray(img.Bounds())
		draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
		return g
	}
	return img
}

// jpegModes lists the modes a baseline JPEG can store.
var jpegModes = map[ColorMode]bool{
	ModeRGB:  true,
	ModeGray: true,
	ModeCMYK: true,
}

// toTruecolor returns an opaque copy of img. Alpha is discarded and the
// stored color channels are kept as they are.
func toTruecolor(img image.Image) rgbImage {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return rgbImage{dst}
}
