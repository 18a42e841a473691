package main

import (
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"match-tool", "-text", "手机", "-profile", "/tmp/p.yaml"},
			out:  []string{"match-tool", "--text", "手机", "--profile", "/tmp/p.yaml"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"match-tool", "-text=手机", "-json=true"},
			out:  []string{"match-tool", "--text=手机", "--json=true"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"match-tool", "--text", "手机", "--threshold", "0.6"},
			out:  []string{"match-tool", "--text", "手机", "--threshold", "0.6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--text", "手机", "--profile", "/tmp/p.yaml", "--threshold", "0.7", "--json"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.text != "手机" {
		t.Fatalf("Expected text=手机, got %q", opts.text)
	}
	if opts.profilePath != "/tmp/p.yaml" {
		t.Fatalf("Expected profilePath=/tmp/p.yaml, got %q", opts.profilePath)
	}
	if opts.threshold != 0.7 {
		t.Fatalf("Expected threshold=0.7, got %v", opts.threshold)
	}
	if !opts.jsonOutput {
		t.Fatal("Expected jsonOutput=true")
	}
}
