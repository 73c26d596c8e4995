package pose

import (
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

type slot struct {
	state   ovr.PoseStatef
	written bool
}

// Cache holds the previous pose state of every tracking slot and every
// hand. A slot that has never been written yields zero derivatives on its
// first update. A Cache is not safe for concurrent use.
type Cache struct {
	devices [vr.MaxTrackedDeviceCount]slot
	hands   [ovr.HandCount]slot
}

// NewCache returns a cache with every slot at the zero pose, untracked.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Reset forgets all history.
func (c *Cache) Reset() {
	initial := slot{state: ovr.PoseStatef{ThePose: ovr.Posef{Orientation: ovr.IdentityQuat}}}
	for i := range c.devices {
		c.devices[i] = initial
	}
	for i := range c.hands {
		c.hands[i] = initial
	}
}

// UpdateDevice derives the pose of a tracking slot at absTime from raw and
// remembers it for the next frame.
func (c *Cache) UpdateDevice(index vr.TrackedDeviceIndex, raw vr.TrackedDevicePose, absTime float64) ovr.PoseStatef {
	if index >= vr.MaxTrackedDeviceCount {
		return ovr.PoseStatef{ThePose: ovr.Posef{Orientation: ovr.IdentityQuat}, TimeInSeconds: absTime}
	}
	return update(&c.devices[index], raw, absTime)
}

// UpdateHand is UpdateDevice for a hand's pose action.
func (c *Cache) UpdateHand(hand ovr.Hand, raw vr.TrackedDevicePose, absTime float64) ovr.PoseStatef {
	if hand < 0 || hand >= ovr.HandCount {
		return ovr.PoseStatef{ThePose: ovr.Posef{Orientation: ovr.IdentityQuat}, TimeInSeconds: absTime}
	}
	return update(&c.hands[hand], raw, absTime)
}

// Device returns the cached state of a tracking slot.
func (c *Cache) Device(index vr.TrackedDeviceIndex) (ovr.PoseStatef, bool) {
	if index >= vr.MaxTrackedDeviceCount {
		return ovr.PoseStatef{}, false
	}
	s := c.devices[index]
	return s.state, s.written
}

// Hand returns the cached state of a hand.
func (c *Cache) Hand(hand ovr.Hand) (ovr.PoseStatef, bool) {
	if hand < 0 || hand >= ovr.HandCount {
		return ovr.PoseStatef{}, false
	}
	s := c.hands[hand]
	return s.state, s.written
}

// update leaves the slot untouched for an invalid sample so the next valid
// one is derived against the last real state.
func update(s *slot, raw vr.TrackedDevicePose, absTime float64) ovr.PoseStatef {
	if !raw.PoseIsValid {
		st := Derive(raw, s.state, 0)
		st.TimeInSeconds = absTime
		return st
	}

	var elapsed float64
	if s.written {
		elapsed = absTime - s.state.TimeInSeconds
	}
	st := Derive(raw, s.state, elapsed)
	st.TimeInSeconds = absTime
	s.state = st
	s.written = true
	return st
}
