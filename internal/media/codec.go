package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register decoder
)

// DataURLPrefix is the prefix every decodable image data URL must carry
const DataURLPrefix = "data:image/"

// ceilings on decoded images; a small compressed payload can otherwise
// expand into gigabytes of pixels
const (
	MaxDimension = 8192
	MaxPixels    = 64 << 20
)

// ErrDecode matches every media decode failure via errors.Is
var ErrDecode = errors.New("media decode error")

// DecodeError describes why an image payload could not be decoded
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media decode error: %s: %v", e.Reason, e.Err)
	}
	return "media decode error: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrDecode as matching
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// EncodeDataURL serializes img as a 16-bit lossless PNG wrapped in a base64 data URL
func EncodeDataURL(img Image) (string, error) {
	var buf bytes.Buffer
	if err := encodePNG(&buf, img, true); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeBatch encodes every image of the batches in order
func EncodeBatch(batches ...Batch) ([]string, error) {
	images := Flatten(batches...)
	urls := make([]string, 0, len(images))
	for i, img := range images {
		u, err := EncodeDataURL(img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image %d: %w", i+1, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// DecodeDataURL parses a data:image/... URL into a 3-channel normalized image
func DecodeDataURL(dataURL string) (Image, error) {
	if !strings.HasPrefix(dataURL, DataURLPrefix) {
		return Image{}, &DecodeError{Reason: "missing data:image/ prefix"}
	}
	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return Image{}, &DecodeError{Reason: "missing payload separator"}
	}

	raw, err := decodeBase64(dataURL[comma+1:])
	if err != nil {
		return Image{}, &DecodeError{Reason: "payload is not valid base64", Err: err}
	}
	return Decode(raw)
}

// Decode decodes raw image bytes (png, jpeg, gif, webp) into a 3-channel normalized image
func Decode(raw []byte) (Image, error) {
	if len(raw) == 0 {
		return Image{}, &DecodeError{Reason: "empty payload"}
	}
	mt := mimetype.Detect(raw)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, &DecodeError{Reason: fmt.Sprintf("unrecognized image format %q", mt.String())}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Image{}, &DecodeError{Reason: fmt.Sprintf("cannot decode %s", mt.String()), Err: err}
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return Image{}, err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, &DecodeError{Reason: fmt.Sprintf("cannot decode %s", mt.String()), Err: err}
	}
	return fromImage(src), nil
}

func checkDimensions(width, height int) error {
	if width > MaxDimension || height > MaxDimension || int64(width)*int64(height) > MaxPixels {
		return &DecodeError{Reason: "image dimensions exceed limit",
			Err: fmt.Errorf("%dx%d, max %d per side and %d pixels", width, height, MaxDimension, MaxPixels)}
	}
	return nil
}

// LoadFile reads an image file from disk
func LoadFile(path string) (Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image %q: %w", path, err)
	}
	img, err := Decode(raw)
	if err != nil {
		return Image{}, fmt.Errorf("failed to load image %q: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to w as an 8-bit PNG
func SavePNG(w io.Writer, img Image) error {
	return encodePNG(w, img, false)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return raw, nil
	}
	// some providers strip padding or use the URL alphabet
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if alt, altErr := enc.DecodeString(payload); altErr == nil {
			return alt, nil
		}
	}
	return nil, err
}

func encodePNG(w io.Writer, img Image, deep bool) error {
	if err := img.Validate(); err != nil {
		return err
	}

	bounds := image.Rect(0, 0, img.Width, img.Height)
	var dst image.Image
	if deep {
		m := image.NewNRGBA64(bounds)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				r, g, b, a := channels(img, y, x)
				m.SetNRGBA64(x, y, color.NRGBA64{R: quantize16(r), G: quantize16(g), B: quantize16(b), A: quantize16(a)})
			}
		}
		dst = m
	} else {
		m := image.NewNRGBA(bounds)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				r, g, b, a := channels(img, y, x)
				m.SetNRGBA(x, y, color.NRGBA{R: quantize8(r), G: quantize8(g), B: quantize8(b), A: quantize8(a)})
			}
		}
		dst = m
	}

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// channels maps a pixel of any supported depth onto r, g, b, a
func channels(img Image, y, x int) (r, g, b, a float32) {
	switch img.Channels {
	case 1:
		v := img.At(y, x, 0)
		return v, v, v, 1
	case 3:
		return img.At(y, x, 0), img.At(y, x, 1), img.At(y, x, 2), 1
	default:
		return img.At(y, x, 0), img.At(y, x, 1), img.At(y, x, 2), img.At(y, x, 3)
	}
}

// fromImage drops alpha without compositing and normalizes to [0,1]
func fromImage(src image.Image) Image {
	bounds := src.Bounds()
	out := NewImage(bounds.Dy(), bounds.Dx(), 3)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.NRGBA64Model.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			out.Set(y, x, 0, float32(c.R)/math.MaxUint16)
			out.Set(y, x, 1, float32(c.G)/math.MaxUint16)
			out.Set(y, x, 2, float32(c.B)/math.MaxUint16)
		}
	}
	return out
}

func clamp01(v float32) float32 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func quantize16(v float32) uint16 {
	return uint16(math.Round(float64(clamp01(v)) * math.MaxUint16))
}

func quantize8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * math.MaxUint8))
}
