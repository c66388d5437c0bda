package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// Cropper re-encodes the selected pixel region into a new image that
// replaces the original for submission. PNG and JPEG cover everything
// the charge-form scanners produce.
type Cropper struct {
	jpegQuality int
}

func NewCropper() *Cropper {
	return &Cropper{jpegQuality: 90}
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func (c *Cropper) Crop(data []byte, region ports.CropRegion) ([]byte, string, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "crop",
			fmt.Errorf("region %dx%d has no area", region.Width, region.Height))
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "crop", fmt.Errorf("decode image: %w", err))
	}

	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "crop",
			fmt.Errorf("region outside image bounds %v", src.Bounds()))
	}

	cropper, ok := src.(subImager)
	if !ok {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "crop",
			fmt.Errorf("image format %s does not support cropping", format))
	}
	cropped := cropper.SubImage(rect)

	var out bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&out, cropped, &jpeg.Options{Quality: c.jpegQuality}); err != nil {
			return nil, "", fmt.Errorf("encode cropped jpeg: %w", err)
		}
		return out.Bytes(), "image/jpeg", nil
	default:
		if err := png.Encode(&out, cropped); err != nil {
			return nil, "", fmt.Errorf("encode cropped png: %w", err)
		}
		return out.Bytes(), "image/png", nil
	}
}
