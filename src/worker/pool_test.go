package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-clip/src/screenshot"
)

func TestPoolRunsJob(t *testing.T) {
	p := New(1, func(region screenshot.Region) ([]string, error) {
		return []string{"电话"}, nil
	})
	defer p.Close()

	done := make(chan struct{})
	ok := p.Submit(context.Background(), screenshot.Region{Width: 10, Height: 10}, func(fragments []string, err error) {
		assert.NoError(t, err)
		assert.Equal(t, []string{"电话"}, fragments)
		close(done)
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestPoolPropagatesError(t *testing.T) {
	wantErr := errors.New("engine unavailable")
	p := New(1, func(region screenshot.Region) ([]string, error) {
		return nil, wantErr
	})
	defer p.Close()

	done := make(chan error, 1)
	p.Submit(context.Background(), screenshot.Region{Width: 1, Height: 1}, func(_ []string, err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, wantErr)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestPoolBackPressure(t *testing.T) {
	block := make(chan struct{})
	p := New(1, func(region screenshot.Region) ([]string, error) {
		<-block
		return nil, nil
	})
	defer p.Close()
	defer close(block)

	cb := func([]string, error) {}
	require.True(t, p.Submit(context.Background(), screenshot.Region{Width: 1, Height: 1}, cb))

	// Worker is blocked; the queue holds one more, anything beyond is dropped.
	deadline := time.After(2 * time.Second)
	for {
		if !p.Submit(context.Background(), screenshot.Region{Width: 1, Height: 1}, cb) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expected back-pressure to drop a submission")
		default:
		}
	}
}

func TestPoolHonorsDeadline(t *testing.T) {
	var running atomic.Bool
	p := New(1, func(region screenshot.Region) ([]string, error) {
		running.Store(true)
		time.Sleep(5 * time.Second)
		return []string{"late"}, nil
	})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	require.True(t, p.Submit(ctx, screenshot.Region{Width: 1, Height: 1}, func(_ []string, err error) {
		done <- err
	}))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, running.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("deadline not honored")
	}
}
