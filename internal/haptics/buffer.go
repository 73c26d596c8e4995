// Package haptics queues vibration samples for a controller and plays them
// back on a dedicated goroutine at the controller's native sample rate.
package haptics

import (
	"sync"
	"time"

	"github.com/soar/ovrinput/internal/ovr"
)

// MaxFrequency is the vibration frequency, in Hz, of a constant vibration
// requested at normalised frequency 1.0.
const MaxFrequency = 320

// DefaultConstantTimeout is how long a constant vibration lasts unless it
// is renewed.
const DefaultConstantTimeout = 2500 * time.Millisecond

// Pulse is one low-level vibration command.
type Pulse struct {
	Duration  time.Duration
	Frequency float32 // Hz
	Amplitude float32 // 0..1
}

// Buffer is a FIFO of amplitude samples plus a constant-vibration fallback.
// Any number of goroutines may call SetConstant, AddSamples and State while
// a single consumer calls Next.
type Buffer struct {
	mu sync.Mutex

	ring  [ovr.HapticsBufferSamplesMax]byte
	head  int
	count int

	constant      Pulse
	constantSet   bool
	constantUntil time.Time

	sampleRate      int
	constantTimeout time.Duration

	now func() time.Time
}

// NewBuffer creates an empty buffer. A constantTimeout of zero makes
// constant vibrations last until they are replaced.
func NewBuffer(sampleRate int, constantTimeout time.Duration) *Buffer {
	if sampleRate <= 0 {
		sampleRate = ovr.HapticsSampleRate
	}
	return &Buffer{
		sampleRate:      sampleRate,
		constantTimeout: constantTimeout,
		now:             time.Now,
	}
}

// SampleRate returns the rate at which queued samples are consumed.
func (b *Buffer) SampleRate() int {
	return b.sampleRate
}

// SetConstant replaces the fallback vibration. frequency and amplitude are
// normalised to 0..1. An amplitude of zero stops the constant vibration.
func (b *Buffer) SetConstant(frequency, amplitude float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amplitude <= 0 {
		b.constantSet = false
		b.constant = Pulse{}
		return
	}

	b.constant = Pulse{
		Frequency: clamp01(frequency) * MaxFrequency,
		Amplitude: clamp01(amplitude),
	}
	b.constantSet = true
	if b.constantTimeout > 0 {
		b.constantUntil = b.now().Add(b.constantTimeout)
	}
}

// AddSamples appends samples to the queue and returns how many were
// accepted. Samples that do not fit in the remaining space are dropped.
// An empty slice is a no-op.
func (b *Buffer) AddSamples(samples []byte) int {
	if len(samples) == 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.ring) - b.count
	if len(samples) < n {
		n = len(samples)
	}
	for _, s := range samples[:n] {
		b.ring[(b.head+b.count)%len(b.ring)] = s
		b.count++
	}
	return n
}

// State returns a snapshot of the queue.
func (b *Buffer) State() ovr.HapticsPlaybackState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return ovr.HapticsPlaybackState{
		RemainingQueueSpace: len(b.ring) - b.count,
		SamplesQueued:       b.count,
		RemainingPlayback:   time.Duration(b.count) * time.Second / time.Duration(b.sampleRate),
	}
}

// Next pops the pulse to play during the coming sample period: the oldest
// queued sample, or the constant vibration when the queue is empty. It
// returns false when there is nothing to play.
func (b *Buffer) Next() (Pulse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count > 0 {
		s := b.ring[b.head]
		b.head = (b.head + 1) % len(b.ring)
		b.count--
		return Pulse{
			Frequency: float32(b.sampleRate),
			Amplitude: float32(s) / 255,
		}, true
	}

	if !b.constantSet {
		return Pulse{}, false
	}
	if b.constantTimeout > 0 && !b.now().Before(b.constantUntil) {
		b.constantSet = false
		return Pulse{}, false
	}
	return b.constant, true
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
