package main

import (
	"testing"
	"time"
)

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "10", "--deadline", "2s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 10 {
		t.Fatalf("Expected n=10, got %d", opts.n)
	}
	if opts.deadline != 2*time.Second {
		t.Fatalf("Expected deadline=2s, got %v", opts.deadline)
	}
}
