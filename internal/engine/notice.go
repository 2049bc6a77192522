package engine

import (
	"sync"
	"time"

	"github.com/Veraticus/spent/internal/clock"
)

// NoticeKind distinguishes success notices from errors.
type NoticeKind int

// Notice kinds.
const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient message that clears itself.
type Notice struct {
	Text string
	Kind NoticeKind
}

// noticeBoard holds at most one notice. A newer notice replaces the current
// one and restarts the dismiss timer.
type noticeBoard struct {
	clock    clock.Clock
	timer    clock.Timer
	notice   *Notice
	duration time.Duration
	gen      int
	mu       sync.Mutex
}

func newNoticeBoard(clk clock.Clock, d time.Duration) *noticeBoard {
	return &noticeBoard{clock: clk, duration: d}
}

func (b *noticeBoard) show(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	b.notice = &n
	b.timer = b.clock.AfterFunc(b.duration, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen == gen {
			b.notice = nil
			b.timer = nil
		}
	})
}

func (b *noticeBoard) current() *Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notice == nil {
		return nil
	}
	n := *b.notice
	return &n
}
