package util

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("file is not a supported image")

type ImageInfo struct {
	MIME   string
	Format string
	Width  int
	Height int
}

// InspectImage sniffs the content type and decodes only the image header.
// The reader is rewound before returning.
func InspectImage(r io.ReadSeeker) (ImageInfo, error) {
	mime, err := DetectMIME(r)
	if err != nil {
		return ImageInfo{}, err
	}
	if !IsImageMIME(mime) {
		return ImageInfo{}, ErrNotImage
	}

	cfg, format, err := image.DecodeConfig(r)
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil {
		return ImageInfo{}, seekErr
	}
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ImageInfo{}, ErrNotImage
	}

	return ImageInfo{MIME: mime, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func DetectMIME(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

func IsImageMIME(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
