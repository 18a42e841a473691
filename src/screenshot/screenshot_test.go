package screenshot

import "testing"

func TestRegionEmpty(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		empty  bool
	}{
		{name: "Normal region", region: Region{X: 10, Y: 10, Width: 100, Height: 40}, empty: false},
		{name: "Zero width", region: Region{X: 10, Y: 10, Width: 0, Height: 40}, empty: true},
		{name: "Zero height", region: Region{X: 10, Y: 10, Width: 100, Height: 0}, empty: true},
		{name: "Negative dimensions", region: Region{Width: -5, Height: -5}, empty: true},
		{name: "Zero value", region: Region{}, empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Empty(); got != tt.empty {
				t.Fatalf("Empty() = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestCaptureRegionRejectsEmptyRegion(t *testing.T) {
	if _, err := CaptureRegion(Region{}); err == nil {
		t.Fatal("expected error for zero-area region")
	}
}
