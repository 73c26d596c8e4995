// Package monitor runs the frame loop: the one goroutine that talks to the
// input manager. It polls every connected controller and the tracking state
// at a fixed rate, publishes each result as a Frame, and executes vibration
// commands between frames.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/ovr"
)

// ErrBusy is returned by Submit when the command queue is full.
var ErrBusy = errors.New("command queue full")

// CommandKind selects what a Command does.
type CommandKind int

const (
	// SetVibration sets a constant vibration.
	SetVibration CommandKind = iota
	// SubmitVibration queues buffered samples.
	SubmitVibration
)

// Command is a vibration request executed on the loop goroutine.
type Command struct {
	Kind       CommandKind
	Controller ovr.ControllerType

	Frequency float32
	Amplitude float32
	Samples   []byte

	// Done, if set, receives the result. It must have room for one value.
	Done chan<- error
}

// Loop polls an input.Manager once per interval.
type Loop struct {
	manager  *input.Manager
	interval time.Duration

	commands chan Command
	frames   chan Frame

	beforeFrame func(now float64)

	seq     uint64
	failing bool
}

func New(m *input.Manager, interval time.Duration) *Loop {
	return &Loop{
		manager:  m,
		interval: interval,
		commands: make(chan Command, 16),
		frames:   make(chan Frame, 8),
	}
}

// BeforeFrame installs a hook run at the start of every Step with the
// tracking clock. The simulated backend uses it to move its devices.
func (l *Loop) BeforeFrame(f func(now float64)) {
	l.beforeFrame = f
}

// Frames returns the channel frames are published on. It is closed when Run
// returns. A slow reader misses frames rather than stalling the loop.
func (l *Loop) Frames() <-chan Frame {
	return l.frames
}

// Submit queues cmd without blocking.
func (l *Loop) Submit(cmd Command) error {
	select {
	case l.commands <- cmd:
		return nil
	default:
		return ErrBusy
	}
}

// Run polls until ctx is cancelled. Commands are executed as they arrive.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.frames)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.commands:
			err := l.execute(cmd)
			if err != nil {
				log.Printf("Vibration command failed: %v", err)
			}
			if cmd.Done != nil {
				cmd.Done <- err
			}
		case <-ticker.C:
			f, err := l.Step()
			if err != nil {
				continue
			}
			l.publish(f)
		}
	}
}

func (l *Loop) publish(f Frame) {
	select {
	case l.frames <- f:
		return
	default:
	}
	// drop the oldest frame to make room
	select {
	case <-l.frames:
	default:
	}
	select {
	case l.frames <- f:
	default:
	}
}

// Step polls one frame. A failed action state refresh is logged once per
// streak of failures and returned.
func (l *Loop) Step() (Frame, error) {
	now := l.manager.Seconds()
	if l.beforeFrame != nil {
		l.beforeFrame(now)
		now = l.manager.Seconds()
	}

	if err := l.manager.UpdateInputState(); err != nil {
		if !l.failing {
			log.Printf("Input update failed: %v", err)
		}
		l.failing = true
		return Frame{}, err
	}
	if l.failing {
		log.Println("Input update recovered")
	}
	l.failing = false

	l.seq++
	f := Frame{
		Seq:       l.seq,
		Time:      now,
		Connected: l.manager.ConnectedControllers(),
	}

	for _, d := range l.manager.Devices() {
		ct := d.Type()
		if f.Connected&ct == 0 {
			continue
		}
		c := ControllerFrame{Type: ct, Name: ct.String()}
		if err := l.manager.InputState(ct, &c.Input); err != nil {
			log.Printf("Input state %s: %v", ct, err)
			continue
		}
		if st, err := l.manager.ControllerVibrationState(ct); err == nil {
			c.Haptics = st
		}
		f.Controllers = append(f.Controllers, c)
	}

	f.Tracking = l.manager.TrackingState(now)
	return f, nil
}

func (l *Loop) execute(cmd Command) error {
	switch cmd.Kind {
	case SetVibration:
		return l.manager.SetControllerVibration(cmd.Controller, cmd.Frequency, cmd.Amplitude)
	case SubmitVibration:
		return l.manager.SubmitControllerVibration(cmd.Controller, ovr.HapticsBuffer{
			Samples:    cmd.Samples,
			SubmitMode: ovr.HapticsBufferSubmitEnqueue,
		})
	}
	return fmt.Errorf("command kind %d: %w", cmd.Kind, ovr.ErrInvalidParameter)
}
