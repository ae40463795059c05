package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// MIMEType is the media type of encoded images.
const MIMEType = "image/png"

// pngEncoder uses a fixed configuration so identical pixel content always
// produces identical bytes.
var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG serializes an image to PNG bytes. Encoding is deterministic:
// the same canvas yields byte-identical output on every call.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode: nil image")
	}
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 wraps PNG bytes in standard base64 for embedding in
// text-based protocol responses.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
