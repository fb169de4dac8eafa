// Package scanner drives a handheld or webcam scan session: frames are
// sampled from a camera source on a fixed cadence and decoded off the capture
// goroutine, while manual text entry stays available as a second producer of
// the same single result.
package scanner

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"
)

// Camera acquisition failures. The session stays usable for manual entry
// regardless of which one occurred.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoDevice         = errors.New("no camera device found")
	ErrDeviceBusy       = errors.New("camera device is in use by another session")
)

// Guidance maps an acquisition error to a message an operator can act on.
func Guidance(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Kamerazugriff wurde verweigert. Bitte Berechtigung erteilen oder Code manuell eingeben."
	case errors.Is(err, ErrNoDevice):
		return "Keine Kamera gefunden. Bitte Code manuell eingeben."
	case errors.Is(err, ErrDeviceBusy):
		return "Kamera wird bereits verwendet. Bitte andere Sitzung schließen oder Code manuell eingeben."
	default:
		return "Kamera nicht verfügbar. Bitte Code manuell eingeben."
	}
}

// FrameSource is the camera device abstraction. NextFrame blocks until a
// frame is available. Close releases the device and must unblock a pending
// NextFrame call.
type FrameSource interface {
	NextFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Result is what a session resolves to, from either producer.
type Result struct {
	Code   string
	Manual bool
}

const defaultInterval = 100 * time.Millisecond

// Session owns one camera source and one decode worker exclusively. It
// resolves exactly once, to the first of: a positive decode or a manual
// submission. The loser is cancelled.
type Session struct {
	source   FrameSource
	decoder  Decoder
	interval time.Duration
	inline   bool // decode on the capture goroutine instead of the worker

	frames chan image.Image // one-slot mailbox to the worker
	result chan Result
	done   chan struct{}

	mu   sync.Mutex
	busy bool // a decode is outstanding; cleared only on decode completion

	resolveOnce sync.Once
	closeOnce   sync.Once
}

type Option func(*Session)

// WithInterval overrides the frame sampling cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithInlineDecode runs the decoder on the capture goroutine. This is the
// degraded mode for environments where a second goroutine per session is not
// acceptable; sampling then pauses for the duration of each decode instead of
// skipping frames.
func WithInlineDecode() Option {
	return func(s *Session) { s.inline = true }
}

// NewSession creates a scan session. source may be nil when camera
// acquisition failed; the session is then manual-entry only.
func NewSession(source FrameSource, decoder Decoder, opts ...Option) *Session {
	s := &Session{
		source:   source,
		decoder:  decoder,
		interval: defaultInterval,
		frames:   make(chan image.Image, 1),
		result:   make(chan Result, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins sampling frames. It returns immediately; the outcome is read
// from Result. Calling Start on a manual-only session is a no-op.
func (s *Session) Start(ctx context.Context) {
	if s.source == nil {
		return
	}
	if !s.inline {
		go s.decodeWorker()
	}
	go s.captureLoop(ctx)
}

// Result yields the single session outcome. The channel never yields more
// than one value.
func (s *Session) Result() <-chan Result {
	return s.result
}

// SubmitManual resolves the session with a typed code, cancelling the camera
// path. It is safe to call at any time, including before Start and after a
// scan already resolved the session (then it is ignored).
func (s *Session) SubmitManual(code string) {
	s.resolve(Result{Code: code, Manual: true})
}

// Close releases the camera source and terminates the worker. It is
// idempotent and must be called on every exit path, including after the
// session resolved on its own.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.source != nil {
			err = s.source.Close()
		}
	})
	return err
}

func (s *Session) resolve(res Result) {
	s.resolveOnce.Do(func() {
		s.result <- res
		s.Close()
	})
}

func (s *Session) captureLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
		}

		if !s.tryAcquire() {
			// Prior decode still in flight, skip this frame.
			continue
		}

		frame, err := s.source.NextFrame(ctx)
		if err != nil {
			s.release()
			s.Close()
			return
		}

		if s.inline {
			s.decodeOne(frame)
			continue
		}

		select {
		case s.frames <- frame:
		case <-s.done:
			s.release()
			return
		}
	}
}

func (s *Session) decodeWorker() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.frames:
			s.decodeOne(frame)
		}
	}
}

// decodeOne runs the decoder over a frame and clears the busy flag. Only this
// completion path flips busy back to idle.
func (s *Session) decodeOne(frame image.Image) {
	code, err := s.decoder.Decode(frame)
	s.release()
	if err != nil {
		// Negative decode, keep sampling.
		return
	}
	s.resolve(Result{Code: code})
}

func (s *Session) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}
