// Package eventloop drives capture sessions from trigger to terminal state.
// A single goroutine owns every session transition; the selector, the OCR
// worker pool and the chooser hand results back through channels, and the
// single-active-session slot rejects triggers that arrive mid-session.
package eventloop

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"profile-clip/src/dispatch"
	"profile-clip/src/hotkey"
	"profile-clip/src/logutil"
	"profile-clip/src/match"
	"profile-clip/src/profile"
	"profile-clip/src/screenshot"
	"profile-clip/src/session"
	"profile-clip/src/singleinstance"
	"profile-clip/src/worker"
)

// Surface lets the user pick a screen region. cancelled is true when the
// user aborted (Escape, closed window) or ctx was cancelled.
type Surface interface {
	Select(ctx context.Context) (region screenshot.Region, cancelled bool, err error)
}

// Store supplies the profile fields candidates are matched against.
type Store interface {
	Fields() []profile.Field
}

// Options wires the loop's collaborators. Recognize runs on pool workers;
// everything else is called from the loop goroutine.
type Options struct {
	Surface   Surface
	Store     Store
	Chooser   dispatch.Chooser
	Sink      dispatch.Sink
	Notifier  dispatch.Notifier
	Recognize worker.RecognizeFunc

	PoolSize     int
	OCRDeadline  time.Duration
	Threshold    float64
	FragmentJoin string

	// OnBusy is invoked with true when a session starts and false when it
	// reaches a terminal state. Used for the tray tooltip. May be nil.
	OnBusy func(busy bool)
}

type recognitionResult struct {
	sess      *session.Session
	fragments []string
	err       error
	done      context.CancelFunc
}

// Loop owns the session slot and the pipeline ordering.
type Loop struct {
	opts      Options
	pool      *worker.Pool
	slot      session.Slot
	triggerCh chan *session.Session
	results   chan recognitionResult

	mu           sync.Mutex
	activeCtx    context.Context
	cancelActive context.CancelFunc

	activations atomic.Uint64
	started     atomic.Uint64
}

func New(opts Options) *Loop {
	if opts.OCRDeadline <= 0 {
		opts.OCRDeadline = 20 * time.Second
	}
	if opts.Threshold <= 0 {
		opts.Threshold = match.DefaultThreshold
	}
	l := &Loop{
		opts:      opts,
		triggerCh: make(chan *session.Session, 1),
		results:   make(chan recognitionResult, 1),
	}
	l.pool = worker.New(opts.PoolSize, opts.Recognize)
	return l
}

// Activate requests a new capture session from any goroutine (hotkey hook,
// tray menu, remote trigger). It returns false when a session is already
// active: extra triggers are rejected, never queued.
func (l *Loop) Activate() bool {
	l.activations.Add(1)
	sess, ok := l.slot.Acquire()
	if !ok {
		log.Printf("EventLoop: activation rejected, capture already in progress")
		return false
	}
	l.started.Add(1)
	select {
	case l.triggerCh <- sess:
		return true
	default:
		// Unreachable while the slot gates triggers, kept as a safety net.
		l.slot.Release(sess)
		return false
	}
}

// Cancel aborts the active session, if any. A selector window closes, an
// in-flight recognition has its result discarded, an open chooser dismisses.
func (l *Loop) Cancel() {
	l.mu.Lock()
	cancel := l.cancelActive
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Active returns the current session, or nil.
func (l *Loop) Active() *session.Session { return l.slot.Active() }

// Activations counts Activate calls; SessionsStarted counts the accepted ones.
func (l *Loop) Activations() uint64     { return l.activations.Load() }
func (l *Loop) SessionsStarted() uint64 { return l.started.Load() }

// StartHotkey registers combo and routes presses into Activate. On a failed
// registration the loop keeps running in degraded mode: tray and remote
// triggers still work.
func (l *Loop) StartHotkey(combo string) error {
	err := hotkey.Listen(combo, func() { l.Activate() })
	if err != nil {
		log.Printf("EventLoop: hotkey registration failed, running degraded: %v", err)
	}
	return err
}

// ServeRemote answers capture-trigger requests from secondary invocations.
// Runs until ctx is cancelled or the server closes.
func (l *Loop) ServeRemote(ctx context.Context, srv singleinstance.Server) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		if l.Activate() {
			if err := conn.RespondOK(); err != nil {
				log.Printf("EventLoop: remote trigger ack failed: %v", err)
			}
		} else {
			_ = conn.RespondBusy()
		}
		_ = conn.Close()
	}
}

// Run is the loop body. It owns all session transitions and must not be
// called from more than one goroutine.
func (l *Loop) Run(ctx context.Context) {
	log.Printf("EventLoop: started")
	defer l.pool.Close()
	for {
		select {
		case <-ctx.Done():
			log.Printf("EventLoop: stopped: %v", ctx.Err())
			return
		case sess := <-l.triggerCh:
			l.runSelection(ctx, sess)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

// runSelection takes a fresh session through selection and hands the region
// to the worker pool. Recognition is the suspension point: the loop goes
// back to its select while OCR runs.
func (l *Loop) runSelection(ctx context.Context, sess *session.Session) {
	l.setBusy(true)
	sctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.activeCtx = sctx
	l.cancelActive = cancel
	l.mu.Unlock()

	log.Printf("EventLoop: session %d selecting", sess.ID())
	region, cancelled, err := l.opts.Surface.Select(sctx)
	if err != nil {
		log.Printf("EventLoop: session %d selection failed: %v", sess.ID(), err)
		_ = sess.To(session.Error)
		l.notify("Capture failed", "Region selection failed")
		l.finish(sess)
		return
	}
	if cancelled || region.Empty() {
		_ = sess.To(session.Cancelled)
		log.Printf("EventLoop: session %d cancelled during selection", sess.ID())
		l.finish(sess)
		return
	}
	sess.SetRegion(region)
	_ = sess.To(session.Captured)
	log.Printf("EventLoop: session %d captured %dx%d at (%d,%d)",
		sess.ID(), region.Width, region.Height, region.X, region.Y)

	_ = sess.To(session.Recognizing)
	jobCtx, jobCancel := context.WithTimeout(sctx, l.opts.OCRDeadline)
	submitted := l.pool.Submit(jobCtx, region, func(fragments []string, err error) {
		l.results <- recognitionResult{sess: sess, fragments: fragments, err: err, done: jobCancel}
	})
	if !submitted {
		jobCancel()
		_ = sess.To(session.Error)
		log.Printf("EventLoop: session %d dropped, recognition queue full", sess.ID())
		l.notify("Capture failed", "Recognition engine is busy")
		l.finish(sess)
	}
}

// handleResult resumes a session after recognition. Results for sessions
// that went terminal in the meantime (user cancelled) are discarded.
func (l *Loop) handleResult(res recognitionResult) {
	defer res.done()
	sess := res.sess
	if sess.State().Terminal() || l.slot.Active() != sess {
		log.Printf("EventLoop: session %d stale recognition result discarded", sess.ID())
		return
	}

	l.mu.Lock()
	sctx := l.activeCtx
	l.mu.Unlock()
	if sctx == nil {
		sctx = context.Background()
	}

	// A cancel surfaces either as a ctx error from the pool or, when
	// recognition finished first, as a cancelled session context. Either way
	// the result is discarded here, the next resumption point.
	if errors.Is(res.err, context.Canceled) || sctx.Err() != nil {
		_ = sess.To(session.Cancelled)
		log.Printf("EventLoop: session %d cancelled during recognition", sess.ID())
		l.finish(sess)
		return
	}
	if res.err != nil {
		_ = sess.To(session.Error)
		log.Printf("EventLoop: session %d recognition failed: %v", sess.ID(), res.err)
		if errors.Is(res.err, context.DeadlineExceeded) {
			l.notify("Capture failed", "Text recognition timed out")
		} else {
			l.notify("Capture failed", "Text recognition failed")
		}
		l.finish(sess)
		return
	}

	_ = sess.To(session.Matching)
	text := match.JoinFragments(res.fragments, l.opts.FragmentJoin)
	sess.SetText(text)
	log.Printf("EventLoop: session %d recognized %q", sess.ID(), logutil.Truncate(text, 80))
	if strings.TrimSpace(text) == "" {
		_ = sess.To(session.NoMatch)
		l.notify("No text", "No text found in the selected region")
		l.finish(sess)
		return
	}

	candidates := match.Match(text, l.opts.Store.Fields(), l.opts.Threshold)
	sess.SetCandidates(candidates)
	log.Printf("EventLoop: session %d matched %d candidate(s)", sess.ID(), len(candidates))

	out := dispatch.Resolve(sctx, text, candidates, dispatch.Deps{
		Chooser:  l.opts.Chooser,
		Sink:     l.opts.Sink,
		Notifier: l.opts.Notifier,
	})
	if out.Kind == dispatch.Resolved {
		_ = sess.To(session.Resolved)
	} else {
		_ = sess.To(session.NoMatch)
	}
	log.Printf("EventLoop: session %d finished %s: %s", sess.ID(), sess.State(), out.Message)
	l.finish(sess)
}

func (l *Loop) finish(sess *session.Session) {
	l.mu.Lock()
	if l.cancelActive != nil {
		l.cancelActive()
	}
	l.cancelActive = nil
	l.activeCtx = nil
	l.mu.Unlock()
	l.slot.Release(sess)
	l.setBusy(false)
}

func (l *Loop) setBusy(busy bool) {
	if l.opts.OnBusy != nil {
		l.opts.OnBusy(busy)
	}
}

func (l *Loop) notify(title, message string) {
	if l.opts.Notifier != nil {
		l.opts.Notifier.Notify(title, message)
	}
}
