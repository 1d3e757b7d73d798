package popup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-zhipin-crawler/internal/session"
)

const dialogHTML = `<html><body>
	<div class="job-list">listings</div>
	<div class="boss-login-dialog"><span class="close"></span></div>
</body></html>`

const plainHTML = `<html><body><div class="job-list">listings</div></body></html>`

func newDialogFake(html string) *session.FakeSession {
	f := session.NewFakeSession()
	f.SetHTML(html)
	f.OnClick("span", func(f *session.FakeSession) error {
		f.Remove(".boss-login-dialog")
		return nil
	})
	return f
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", timeout)
}

func TestWatcherDismissesDialog(t *testing.T) {
	fake := newDialogFake(dialogHTML)
	w := New(fake, ".boss-login-dialog", "span", 10*time.Millisecond)
	w.Start()
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool { return w.Dismissed() == 1 })

	// dialog is gone; the watcher keeps polling without re-dismissing
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), w.Dismissed())
}

func TestWatcherIgnoresHiddenDialog(t *testing.T) {
	fake := newDialogFake(`<html><body><div class="boss-login-dialog" style="display: none"><span></span></div></body></html>`)
	w := New(fake, ".boss-login-dialog", "span", 10*time.Millisecond)
	w.Start()
	time.Sleep(60 * time.Millisecond)
	w.Stop()
	assert.Zero(t, w.Dismissed())
}

func TestWatcherTolerantOfAbsentDialog(t *testing.T) {
	fake := newDialogFake(plainHTML)
	w := New(fake, ".boss-login-dialog", "span", 10*time.Millisecond)
	w.Start()
	time.Sleep(60 * time.Millisecond)
	w.Stop()
	assert.Zero(t, w.Dismissed())
	assert.Equal(t, StateStopped, w.State())
}

func TestWatcherStopHaltsAllSessionInteractions(t *testing.T) {
	fake := newDialogFake(plainHTML)
	w := New(fake, ".boss-login-dialog", "span", 5*time.Millisecond)
	w.Start()
	waitFor(t, 2*time.Second, func() bool { return fake.Ops() > 0 })

	w.Stop()
	require.Equal(t, StateStopped, w.State())

	opsAtStop := fake.Ops()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, opsAtStop, fake.Ops(), "no session interactions may happen after Stop returns")
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	fake := newDialogFake(plainHTML)
	w := New(fake, ".boss-login-dialog", "span", 5*time.Millisecond)
	w.Start()
	w.Stop()
	w.Stop()
	assert.Equal(t, StateStopped, w.State())
}

func TestWatcherStopBeforeStart(t *testing.T) {
	fake := newDialogFake(plainHTML)
	w := New(fake, ".boss-login-dialog", "span", 5*time.Millisecond)
	w.Stop()
	assert.Equal(t, StateStopped, w.State())

	// Start after Stop must not resurrect the loop
	w.Start()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, fake.Ops())
}

func TestWatcherStateTransitions(t *testing.T) {
	fake := newDialogFake(plainHTML)
	w := New(fake, ".boss-login-dialog", "span", 5*time.Millisecond)
	assert.Equal(t, StateIdle, w.State())
	w.Start()
	assert.Equal(t, StateWatching, w.State())
	w.Stop()
	assert.Equal(t, StateStopped, w.State())
}
