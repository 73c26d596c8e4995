package haptics

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle stage of a Player.
type State int32

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// DefaultJoinTimeout bounds how long Close waits for the playback goroutine.
const DefaultJoinTimeout = 250 * time.Millisecond

// PulseFunc issues one low-level vibration pulse to the hardware.
type PulseFunc func(Pulse) error

// Player drains a Buffer on its own goroutine, one pulse per sample period.
// The goroutine starts on the first Wake and is joined by Close.
type Player struct {
	buf         *Buffer
	pulse       PulseFunc
	period      time.Duration
	joinTimeout time.Duration

	state atomic.Int32

	// guards the Idle -> Running and Running -> Stopping transitions
	mu   sync.Mutex
	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// NewPlayer creates an idle player for buf. The sample period is derived
// from the buffer's sample rate.
func NewPlayer(buf *Buffer, pulse PulseFunc, joinTimeout time.Duration) *Player {
	if joinTimeout <= 0 {
		joinTimeout = DefaultJoinTimeout
	}
	return &Player{
		buf:         buf,
		pulse:       pulse,
		period:      time.Second / time.Duration(buf.SampleRate()),
		joinTimeout: joinTimeout,
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (p *Player) State() State {
	return State(p.state.Load())
}

// Period returns the interval between pulses.
func (p *Player) Period() time.Duration {
	return p.period
}

// Wake tells the player there is something new to play, starting the
// playback goroutine if it is not yet running. Wake never blocks. It has no
// effect once Close has been called.
func (p *Player) Wake() {
	p.mu.Lock()
	switch p.State() {
	case Idle:
		p.state.Store(int32(Running))
		go p.run()
	case Stopping:
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close stops the playback goroutine and waits for it to exit. No pulse
// starts once Close has marked the player stopping. A goroutine that fails to exit within the
// join timeout is stuck inside the hardware pulse call, which is not
// recoverable, so Close panics.
func (p *Player) Close() {
	p.mu.Lock()
	prev := p.State()
	if prev == Stopping {
		p.mu.Unlock()
		return
	}
	p.state.Store(int32(Stopping))
	close(p.quit)
	p.mu.Unlock()

	if prev == Idle {
		return
	}

	select {
	case <-p.done:
	case <-time.After(p.joinTimeout):
		log.Panicf("haptics: playback goroutine did not stop within %v", p.joinTimeout)
	}
}

func (p *Player) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	var failing bool

	for {
		pulse, ok := p.buf.Next()
		if !ok {
			// nothing queued and no constant vibration: park until woken
			select {
			case <-p.quit:
				return
			case <-p.wake:
				ticker.Reset(p.period)
				continue
			}
		}

		// Close may have begun while Next was waiting on the buffer
		if p.State() == Stopping {
			return
		}

		pulse.Duration = p.period
		if err := p.pulse(pulse); err != nil {
			if !failing {
				log.Printf("haptics: pulse failed: %v", err)
			}
			failing = true
		} else {
			failing = false
		}

		select {
		case <-p.quit:
			return
		case <-ticker.C:
		}
	}
}
