package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService prepares album covers for saving next to the tracks and for
// embedding into ID3 tags.
//
//	svc := NewImageService()
//	cover, err := svc.FitJPEG(ctx, downloaded, 1000)
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService encoding JPEG at quality 90.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// FitJPEG scales the image down to fit a maxSize x maxSize box, keeping its
// aspect ratio, and re-encodes it as JPEG. Images that already fit are only
// re-encoded. maxSize <= 0 disables scaling.
//
// The Catmull-Rom kernel is used for scaling.
func (s *ImageService) FitJPEG(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	width, height := FitSize(img.Bounds().Dx(), img.Bounds().Dy(), maxSize)
	if width != img.Bounds().Dx() || height != img.Bounds().Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FitSize computes the dimensions of a width x height image scaled down to
// fit a maxSize square.
//
//	FitSize(1500, 1000, 1000) // 1000, 666
//	FitSize(800, 600, 1000)   // 800, 600
func FitSize(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		return maxSize, max(1, height*maxSize/width)
	}
	return max(1, width*maxSize/height), maxSize
}
