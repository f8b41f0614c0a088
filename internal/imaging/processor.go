// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging prepares uploaded images before they are sent to the
// backend: EXIF orientation is applied, oversized images are scaled down and
// metadata is dropped by re-encoding.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types of images the processor can handle.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// ErrNotImage is returned for data that is not a supported image. Callers
// upload such files unchanged.
var ErrNotImage = errors.New("imaging: not a supported image")

// Result is a processed image ready for upload.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
	Width    int
	Height   int
	Resized  bool
}

// Processor normalizes uploaded images.
type Processor struct {
	maxWidth int
	quality  int
}

// NewProcessor creates a processor that scales images wider than maxWidth
// down to it. A maxWidth of 0 keeps the original size.
func NewProcessor(maxWidth int) *Processor {
	return &Processor{maxWidth: maxWidth, quality: 90}
}

// Prepare decodes the image, applies its EXIF orientation, fits it to the
// maximum width and encodes it again. WebP input comes out as JPEG since
// there is no pure Go WebP encoder.
func (p *Processor) Prepare(r io.Reader, filename string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	resized := false
	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
		resized = true
	}

	if format == "webp" {
		format = "jpeg"
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	}

	out, err := encodeImage(img, format, p.quality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:     out,
		Filename: filepath.Base(filename),
		MimeType: formatToMimeType(format),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Resized:  resized,
	}, nil
}

// IsImage reports whether mimeType is an image the processor handles.
func IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// DetectMimeType sniffs the MIME type of data without parameters.
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return contentType
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation undoes the camera rotation recorded in EXIF.
// 2 flip H, 3 rotate 180, 4 flip V, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
