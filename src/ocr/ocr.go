package ocr

import (
	"log"
	"strings"

	"profile-clip/src/llm"
	"profile-clip/src/screenshot"
)

func Init() {
	// Initialize OCR package if needed
}

// Recognize captures the region and runs it through the vision model.
// The result is returned as text fragments, one per recognized line; an image
// with no readable text yields an empty slice and a nil error.
func Recognize(region screenshot.Region) ([]string, error) {
	log.Printf("OCR: capturing region X=%d Y=%d W=%d H=%d", region.X, region.Y, region.Width, region.Height)

	imageData, err := screenshot.CaptureRegion(region)
	if err != nil {
		return nil, err
	}

	text, err := llm.QueryVision(imageData)
	if err != nil {
		return nil, err
	}

	return SplitFragments(text), nil
}

// RecognizeImage runs OCR on already-captured PNG bytes.
func RecognizeImage(imageData []byte) ([]string, error) {
	text, err := llm.QueryVision(imageData)
	if err != nil {
		return nil, err
	}
	return SplitFragments(text), nil
}

// SplitFragments breaks raw model output into non-empty line fragments.
func SplitFragments(text string) []string {
	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fragments = append(fragments, trimmed)
		}
	}
	return fragments
}
