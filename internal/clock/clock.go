// Package clock provides the cancellable repeating timer used to drive quiz countdowns.
package clock

import (
	"sync"
	"time"
)

// Ticker is a cancellable repeating timer handle.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Real is backed by time.Ticker.
type Real struct{}

func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Manual is a test clock; its tickers only fire when told to.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*ManualTicker
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &ManualTicker{interval: d, ch: make(chan time.Time)}
	m.tickers = append(m.tickers, t)
	return t
}

// Tickers returns every ticker created so far.
func (m *Manual) Tickers() []*ManualTicker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ManualTicker, len(m.tickers))
	copy(out, m.tickers)
	return out
}

// Last returns the most recently created ticker, or nil.
func (m *Manual) Last() *ManualTicker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tickers) == 0 {
		return nil
	}
	return m.tickers[len(m.tickers)-1]
}

// Advance moves time forward by d and fires every live ticker once per elapsed interval.
// Delivery blocks until the receiver takes each tick.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	tickers := make([]*ManualTicker, len(m.tickers))
	copy(tickers, m.tickers)
	m.mu.Unlock()

	for _, t := range tickers {
		if t.interval <= 0 {
			continue
		}
		for n := int64(d / t.interval); n > 0; n-- {
			if !t.Fire(now) {
				break
			}
		}
	}
}

// ManualTicker is a Ticker controlled by a Manual clock.
type ManualTicker struct {
	interval time.Duration
	ch       chan time.Time

	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
}

func (t *ManualTicker) C() <-chan time.Time { return t.ch }

func (t *ManualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.stop != nil {
		close(t.stop)
	}
}

// Stopped reports whether Stop has been called.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire delivers one tick. It returns false without delivering if the ticker is stopped,
// including when it is stopped while the send is pending.
func (t *ManualTicker) Fire(at time.Time) bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	if t.stop == nil {
		t.stop = make(chan struct{})
	}
	stop := t.stop
	t.mu.Unlock()

	select {
	case t.ch <- at:
		return true
	case <-stop:
		return false
	}
}
