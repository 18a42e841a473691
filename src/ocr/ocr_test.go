package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFragments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []string
	}{
		{name: "Single line", in: "电话", out: []string{"电话"}},
		{name: "Multiple lines", in: "姓名\n电话", out: []string{"姓名", "电话"}},
		{name: "Blank lines dropped", in: "\n姓名\n\n  \n电话\n", out: []string{"姓名", "电话"}},
		{name: "Surrounding space trimmed", in: "  手机  ", out: []string{"手机"}},
		{name: "Empty input", in: "", out: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, SplitFragments(tt.in))
		})
	}
}
