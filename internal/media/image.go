// Package media converts between the host's normalized float image arrays and the
// base64 data URLs that chat-completions providers send and receive.
package media

import "fmt"

// Image is a normalized (height, width, channel) array with values in [0,1].
// Pix is row-major with interleaved channels.
type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

// Batch is a (count, height, width, channel) array; entries may differ in size
type Batch []Image

// placeholder dimensions returned when image generation fails
const (
	PlaceholderHeight = 512
	PlaceholderWidth  = 512
)

// NewImage allocates a zeroed image
func NewImage(height, width, channels int) Image {
	return Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float32, height*width*channels),
	}
}

// At returns the value of channel c at row y, column x
func (img Image) At(y, x, c int) float32 {
	return img.Pix[(y*img.Width+x)*img.Channels+c]
}

// Set stores v at row y, column x, channel c
func (img Image) Set(y, x, c int, v float32) {
	img.Pix[(y*img.Width+x)*img.Channels+c] = v
}

// Validate checks the shape invariants of the array
func (img Image) Validate() error {
	if img.Height <= 0 || img.Width <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", img.Width, img.Height)
	}
	switch img.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("unsupported channel count %d (want 1, 3 or 4)", img.Channels)
	}
	if len(img.Pix) != img.Height*img.Width*img.Channels {
		return fmt.Errorf("pixel buffer has %d values, want %d", len(img.Pix), img.Height*img.Width*img.Channels)
	}
	return nil
}

// Shape returns (height, width, channels)
func (img Image) Shape() [3]int {
	return [3]int{img.Height, img.Width, img.Channels}
}

// Flatten expands batches into a single ordered list of images
func Flatten(batches ...Batch) []Image {
	var out []Image
	for _, b := range batches {
		out = append(out, b...)
	}
	return out
}

// Stack collects images into a batch
func Stack(images ...Image) Batch {
	return append(Batch(nil), images...)
}

// Count returns how many individual images the batches carry
func Count(batches ...Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}

// Placeholder returns the neutral single-image batch handed back when generation fails
func Placeholder() Batch {
	return Batch{NewImage(PlaceholderHeight, PlaceholderWidth, 3)}
}

// PadTo returns a batch of at least n images, repeating the first image as needed.
// The input batch is left untouched.
func (b Batch) PadTo(n int) Batch {
	out := make(Batch, len(b), max(len(b), n))
	copy(out, b)
	if len(b) == 0 {
		return out
	}
	for len(out) < n {
		out = append(out, b[0])
	}
	return out
}
