// Package imaging decodes, validates and resizes uploaded images.
// Every accepted image is re-encoded as JPEG so stored files carry no
// metadata or unexpected container payloads.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	xdraw "golang.org/x/image/draw"

	// registered decoders
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// MainMaxDim bounds the long edge of the stored image.
	MainMaxDim = 1080
	// ThumbMaxDim bounds the long edge of the thumbnail.
	ThumbMaxDim = 360
	// jpegQuality is used for every re-encode.
	jpegQuality = 82
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Processed is the result of running an upload through the pipeline.
type Processed struct {
	Main     []byte
	Thumb    []byte
	Width    int // dimensions of the re-encoded main image
	Height   int
	MimeType string // always image/jpeg
}

// Process validates raw upload bytes and produces the bounded main
// image plus thumbnail, both JPEG.
func Process(data []byte) (*Processed, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("imaging: empty file")
	}

	detected := http.DetectContentType(data)
	if !allowedTypes[detected] {
		return nil, fmt.Errorf("imaging: unsupported content type %s", detected)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	main := resizeToFit(src, MainMaxDim, MainMaxDim)
	thumb := resizeToFit(src, ThumbMaxDim, ThumbMaxDim)

	mainBytes, err := encodeJPEG(main)
	if err != nil {
		return nil, err
	}
	thumbBytes, err := encodeJPEG(thumb)
	if err != nil {
		return nil, err
	}

	b := main.Bounds()
	return &Processed{
		Main:     mainBytes,
		Thumb:    thumbBytes,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: "image/jpeg",
	}, nil
}

// resizeToFit scales src down to fit within maxW x maxH preserving
// aspect ratio. Images already within bounds are returned unscaled.
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), nil
}
