package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"
)

// Region is a rectangle on the virtual screen, in absolute coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the region has zero area. An empty region from the
// capture surface means the user made a degenerate selection.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func Init() {
	// Initialize screenshot package if needed
}

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		union = union.Union(b)
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// CaptureRegion captures a specific region of the screen as PNG bytes.
func CaptureRegion(region Region) ([]byte, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}

	bounds := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %v", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %v", err)
	}

	return buf.Bytes(), nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}
