package ovr

import "time"

// HapticsSampleRate is the native sample rate of buffered Touch haptics.
const HapticsSampleRate = 320

// HapticsBufferSamplesMax is the largest buffer a caller may submit, and
// the capacity of a device's sample queue.
const HapticsBufferSamplesMax = 256

type HapticsBufferSubmitMode int

const (
	HapticsBufferSubmitEnqueue HapticsBufferSubmitMode = iota
)

// HapticsBuffer is a caller-supplied run of amplitude samples, one byte each
// (0 silent, 255 full strength).
type HapticsBuffer struct {
	Samples    []byte
	SubmitMode HapticsBufferSubmitMode
}

// HapticsPlaybackState reports the queue of one device.
type HapticsPlaybackState struct {
	RemainingQueueSpace int           `json:"remainingQueueSpace"`
	SamplesQueued       int           `json:"samplesQueued"`
	RemainingPlayback   time.Duration `json:"remainingPlayback"`
}

// TouchHapticsDesc describes the buffered haptics capability of a
// controller.
type TouchHapticsDesc struct {
	SampleRateHz                  int `json:"sampleRateHz"`
	SampleSizeInBytes             int `json:"sampleSizeInBytes"`
	QueueMinSizeToAvoidStarvation int `json:"queueMinSizeToAvoidStarvation"`
	SubmitMinSamples              int `json:"submitMinSamples"`
	SubmitMaxSamples              int `json:"submitMaxSamples"`
	SubmitOptimalSamples          int `json:"submitOptimalSamples"`
}

// DefaultTouchHapticsDesc is the descriptor reported for Touch controllers.
var DefaultTouchHapticsDesc = TouchHapticsDesc{
	SampleRateHz:                  HapticsSampleRate,
	SampleSizeInBytes:             1,
	QueueMinSizeToAvoidStarvation: 5,
	SubmitMinSamples:              1,
	SubmitMaxSamples:              HapticsBufferSamplesMax,
	SubmitOptimalSamples:          20,
}
