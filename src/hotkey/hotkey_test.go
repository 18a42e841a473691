package hotkey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []string
	}{
		{name: "Default combo", in: "Alt+C", out: []string{"alt", "c"}},
		{name: "Three keys", in: "Ctrl+Shift+T", out: []string{"ctrl", "shift", "t"}},
		{name: "Super alias", in: "Win+Q", out: []string{"cmd", "q"}},
		{name: "Whitespace tolerated", in: " ctrl + alt + q ", out: []string{"ctrl", "alt", "q"}},
		{name: "Empty", in: "", out: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, parseHotkey(tt.in))
		})
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want []uint16
	}{
		{name: "Letter", key: "c", want: []uint16{67}},
		{name: "Letter uppercase input", key: "Q", want: []uint16{81}},
		{name: "Digit", key: "7", want: []uint16{55}},
		{name: "Ctrl both variants", key: "ctrl", want: []uint16{162, 163}},
		{name: "Alt both variants", key: "alt", want: []uint16{164, 165}},
		{name: "F1", key: "f1", want: []uint16{112}},
		{name: "F24", key: "f24", want: []uint16{135}},
		{name: "Escape", key: "esc", want: []uint16{27}},
		{name: "Unknown", key: "meta??", want: nil},
		{name: "F0 out of range", key: "f0", want: nil},
		{name: "F25 out of range", key: "f25", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyNameToRawcodes(tt.key))
		})
	}
}

func TestListenRejectsUnmappableCombo(t *testing.T) {
	err := Listen("Hyper+X", func() {})
	assert.True(t, errors.Is(err, ErrRegistration))

	err = Listen("", func() {})
	assert.True(t, errors.Is(err, ErrRegistration))
}
