package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

var ErrUndecodableImage = errors.New("image cannot be decoded")

const (
	ProofMaxEdge     = 1600
	ProofJPEGQuality = 80
)

// NormalizeProof decodes any format imaging understands, fits it inside
// ProofMaxEdge x ProofMaxEdge and re-encodes it as JPEG.
func NormalizeProof(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	b := img.Bounds()
	if b.Dx() > ProofMaxEdge || b.Dy() > ProofMaxEdge {
		img = imaging.Fit(img, ProofMaxEdge, ProofMaxEdge, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ProofJPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
