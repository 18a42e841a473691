package singleinstance

import (
	"context"
	"os"
	"testing"
	"time"
)

func withTestPorts(t *testing.T) {
	t.Helper()
	// Keep test traffic away from any real resident.
	os.Setenv("PROFILE_CLIP_PORT_START", "39560")
	os.Setenv("PROFILE_CLIP_PORT_END", "39561")
	t.Cleanup(func() {
		os.Unsetenv("PROFILE_CLIP_PORT_START")
		os.Unsetenv("PROFILE_CLIP_PORT_END")
	})
}

func TestServerClientRoundTrip(t *testing.T) {
	withTestPorts(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	client := NewClient()
	delegatedCh := make(chan struct{})
	go func() {
		defer close(delegatedCh)
		delegated, err := client.TryCapture(ctx)
		if err != nil {
			t.Errorf("client: %v", err)
		}
		if !delegated {
			t.Errorf("expected delegation to resident")
		}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := conn.RespondOK(); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()
	<-delegatedCh
}

func TestClientBusyResponse(t *testing.T) {
	withTestPorts(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := NewClient().TryCapture(ctx)
		errCh <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := conn.RespondBusy(); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	if err := <-errCh; err == nil {
		t.Fatal("expected busy error")
	}
}

func TestTryCaptureNoResident(t *testing.T) {
	withTestPorts(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	delegated, err := NewClient().TryCapture(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delegated {
		t.Fatal("expected no resident")
	}
}

func TestPortRangeClamping(t *testing.T) {
	os.Setenv("PROFILE_CLIP_PORT_START", "100")
	os.Setenv("PROFILE_CLIP_PORT_END", "99999")
	defer func() {
		os.Unsetenv("PROFILE_CLIP_PORT_START")
		os.Unsetenv("PROFILE_CLIP_PORT_END")
	}()

	start, end := getPortRange()
	if start != 1024 || end != 65535 {
		t.Fatalf("expected clamped range [1024,65535], got [%d,%d]", start, end)
	}
}
