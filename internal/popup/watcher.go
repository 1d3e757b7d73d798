// The board throws a login dialog over the results at unpredictable
// moments, and while it is up nothing underneath is clickable. The watcher
// runs next to the main crawl flow and closes the dialog whenever it shows
// up. Detection is a plain polling loop: a fixed-cadence check of one
// "dialog visible" predicate, which costs a cheap driver roundtrip per
// tick and needs no injected page-side state that a navigation would wipe.

package popup

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go-zhipin-crawler/internal/session"
)

// State is the watcher's lifecycle position.
type State int32

const (
	// StateIdle means Start has not been called.
	StateIdle State = iota
	// StateWatching means the background check loop is running.
	StateWatching
	// StateStopped is terminal: the loop has been cancelled and awaited.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Watcher polls a session for an interrupting dialog and dismisses it.
// Missed detections are tolerated: the main flow will stumble over the
// dialog itself eventually, and the next tick gets another chance.
type Watcher struct {
	sess      session.Session
	dialogSel string
	closeSel  string
	interval  time.Duration

	state     atomic.Int32
	started   atomic.Bool
	dismissed atomic.Int64
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// New builds a watcher that looks for dialogSel every interval and, when
// it is visible, clicks closeSel inside it. It does not start polling
// until Start.
func New(sess session.Session, dialogSel, closeSel string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 750 * time.Millisecond
	}
	return &Watcher{
		sess:      sess,
		dialogSel: dialogSel,
		closeSel:  closeSel,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the background check loop. Calling Start again, or after
// Stop, is a no-op.
func (w *Watcher) Start() {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StateWatching)) {
		return
	}
	w.started.Store(true)
	go w.loop()
}

func (w *Watcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll runs one presence check and, on a hit, one dismiss. Each session
// command takes the session's own lock, so the watcher never races a
// driver command issued by the main flow.
func (w *Watcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	dialog, err := w.sess.Locate(ctx, w.dialogSel)
	if err != nil {
		return
	}
	visible, err := dialog.Visible(ctx)
	if err != nil || !visible {
		return
	}

	closeBtn, err := dialog.Locate(ctx, w.closeSel)
	if err != nil {
		log.Printf("popup: dialog present but close control missing: %v", err)
		return
	}
	if err := closeBtn.Click(ctx); err != nil {
		// the dialog may have gone away on its own between check and
		// click; either way the next tick re-checks
		log.Printf("popup: dismiss failed: %v", err)
		return
	}
	w.dismissed.Add(1)
	log.Printf("popup: login dialog dismissed")
}

// Stop cancels the loop and waits for it to finish, so no session command
// can be issued by the watcher after Stop returns. Idempotent, and safe
// to call even if Start never ran.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.state.Store(int32(StateStopped))
	if w.started.Load() {
		<-w.done
	}
}

// State returns the watcher's current lifecycle state.
func (w *Watcher) State() State { return State(w.state.Load()) }

// Dismissed returns how many dialogs the watcher has closed.
func (w *Watcher) Dismissed() int64 { return w.dismissed.Load() }
