package scanner

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	frames int64
	closed int64
}

func (f *fakeSource) NextFrame(ctx context.Context) (image.Image, error) {
	atomic.AddInt64(&f.frames, 1)
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeSource) Close() error {
	atomic.AddInt64(&f.closed, 1)
	return nil
}

func (f *fakeSource) frameCount() int64 { return atomic.LoadInt64(&f.frames) }
func (f *fakeSource) isClosed() bool    { return atomic.LoadInt64(&f.closed) > 0 }

// blockingDecoder holds every decode until the test releases it, so the test
// controls exactly when a decode completes.
type blockingDecoder struct {
	release chan struct{}
	code    string
	err     error
}

func (d *blockingDecoder) Decode(img image.Image) (string, error) {
	<-d.release
	return d.code, d.err
}

func TestFrameSkipWhileDecodeOutstanding(t *testing.T) {
	source := &fakeSource{}
	decoder := &blockingDecoder{release: make(chan struct{}), code: "MAT-1A2B3C4D"}
	session := NewSession(source, decoder, WithInterval(5*time.Millisecond))
	defer session.Close()

	session.Start(context.Background())

	// Many ticks pass while the first decode is still in flight. No second
	// frame may be sampled during that window.
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, source.frameCount())

	close(decoder.release)

	select {
	case res := <-session.Result():
		assert.Equal(t, "MAT-1A2B3C4D", res.Code)
		assert.False(t, res.Manual)
	case <-time.After(time.Second):
		t.Fatal("session did not resolve after decode completed")
	}

	assert.True(t, source.isClosed(), "positive decode must release the camera")
}

func TestNegativeDecodeKeepsSampling(t *testing.T) {
	source := &fakeSource{}
	decoder := &blockingDecoder{release: make(chan struct{}), err: errors.New("no code in frame")}
	close(decoder.release)
	session := NewSession(source, decoder, WithInterval(5*time.Millisecond))
	defer session.Close()

	session.Start(context.Background())

	time.Sleep(60 * time.Millisecond)
	assert.Greater(t, source.frameCount(), int64(2), "sampling must continue after negative decodes")

	select {
	case <-session.Result():
		t.Fatal("session must not resolve on negative decodes")
	default:
	}
}

func TestManualEntryCancelsCameraPath(t *testing.T) {
	source := &fakeSource{}
	decoder := &blockingDecoder{release: make(chan struct{}), code: "never-delivered"}
	session := NewSession(source, decoder, WithInterval(5*time.Millisecond))
	defer session.Close()

	session.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	session.SubmitManual("LOC-AABBCCDD")

	select {
	case res := <-session.Result():
		assert.Equal(t, "LOC-AABBCCDD", res.Code)
		assert.True(t, res.Manual)
	case <-time.After(time.Second):
		t.Fatal("manual submission did not resolve the session")
	}

	assert.True(t, source.isClosed(), "manual override must release the camera")

	// A late decode completion must not produce a second result.
	close(decoder.release)
	time.Sleep(20 * time.Millisecond)
	select {
	case <-session.Result():
		t.Fatal("session resolved twice")
	default:
	}
}

func TestManualOnlySessionWithoutCamera(t *testing.T) {
	session := NewSession(nil, NewQRDecoder())
	defer session.Close()

	session.Start(context.Background())
	session.SubmitManual("MCH-11223344")

	res := <-session.Result()
	assert.Equal(t, "MCH-11223344", res.Code)
	assert.True(t, res.Manual)
}

func TestCloseReleasesSource(t *testing.T) {
	source := &fakeSource{}
	decoder := &blockingDecoder{release: make(chan struct{}), err: errors.New("no code in frame")}
	close(decoder.release)
	session := NewSession(source, decoder, WithInterval(5*time.Millisecond))

	session.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, session.Close())
	assert.True(t, source.isClosed())

	// Idempotent.
	require.NoError(t, session.Close())
	assert.EqualValues(t, 1, atomic.LoadInt64(&source.closed))
}

func TestGuidanceClassification(t *testing.T) {
	assert.Contains(t, Guidance(ErrPermissionDenied), "Berechtigung")
	assert.Contains(t, Guidance(ErrNoDevice), "Keine Kamera")
	assert.Contains(t, Guidance(ErrDeviceBusy), "bereits verwendet")
	assert.Contains(t, Guidance(errors.New("boom")), "manuell")
}
