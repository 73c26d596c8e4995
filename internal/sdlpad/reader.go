// Package sdlpad polls SDL3 joysticks and feeds the active one into a
// gamepad.System.
package sdlpad

import (
	"context"
	"errors"
	"log"
	"runtime"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/soar/ovrinput/internal/gamepad"
)

const pollDelayNS = 4_000_000 // ~250Hz, above any frame rate the monitor runs at

// ErrRumbleBusy is returned when rumble requests arrive faster than the SDL
// thread drains them.
var ErrRumbleBusy = errors.New("rumble queue full")

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

// joystickSource adapts an open joystick to gamepad.RawSource.
type joystickSource struct {
	js *sdl.Joystick
}

func (s joystickSource) Axis(index int32) int16 {
	return sdl.GetJoystickAxis(s.js, index)
}

func (s joystickSource) Button(index int32) bool {
	return sdl.GetJoystickButton(s.js, index)
}

func (s joystickSource) NumButtons() int32 {
	return sdl.GetNumJoystickButtons(s.js)
}

func (s joystickSource) Hat() (uint8, bool) {
	if sdl.GetNumJoystickHats(s.js) <= 0 {
		return 0, false
	}
	return sdl.GetJoystickHat(s.js, 0), true
}

// Reader reads gamepad input from the SDL3 Joystick API and publishes it to
// its System. All SDL calls happen on the goroutine running Run.
type Reader struct {
	system    *gamepad.System
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	rumble    chan gamepad.Rumble
	onInit    func()
}

func NewReader() *Reader {
	r := &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		rumble:    make(chan gamepad.Rumble, 8),
	}
	r.system = gamepad.NewSystem(r.queueRumble)
	return r
}

// OnInit registers f to run on the SDL thread right after SDL is initialized.
func (r *Reader) OnInit(f func()) {
	r.onInit = f
}

// System returns the action and tracking system fed by this reader.
func (r *Reader) System() *gamepad.System {
	return r.system
}

// queueRumble hands a rumble request to the SDL thread without blocking.
func (r *Reader) queueRumble(rb gamepad.Rumble) error {
	select {
	case r.rumble <- rb:
		return nil
	default:
		return ErrRumbleBusy
	}
}

// Run initializes SDL and runs the event+polling loop on the current thread
// until ctx is cancelled.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		return errors.New("SDL init failed: " + sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")
	if r.onInit != nil {
		r.onInit()
	}

	// Check for already-connected joysticks
	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			r.system.SetState(gamepad.State{})
			return nil
		default:
		}

		r.processEvents()
		r.drainRumble()
		r.pollState()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) drainRumble() {
	for {
		select {
		case rb := <-r.rumble:
			info, ok := r.active()
			if !ok {
				continue
			}
			if !sdl.RumbleJoystick(info.joystick, rb.Low, rb.High, rb.DurationMs) {
				log.Printf("Rumble failed on %s: %s", info.name, sdl.GetError())
			}
		default:
			return
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) mapping=%s axes=%d buttons=%d hats=%d",
		name, vendorID, productID, mapping.Name,
		sdl.GetNumJoystickAxes(js), sdl.GetNumJoystickButtons(js), sdl.GetNumJoystickHats(js))

	// Use the first connected joystick as active
	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		log.Printf("Active joystick set: %s (ID=%d)", name, jsID)
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false

	// Promote the next available joystick
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			log.Printf("Active joystick switched to: %s (ID=%d)", js.name, id)
			break
		}
	}
	if !r.hasActive {
		r.system.SetState(gamepad.State{})
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
	r.hasActive = false
}

func (r *Reader) active() (*joystickInfo, bool) {
	if !r.hasActive {
		return nil, false
	}
	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return nil, false
	}
	return info, true
}

func (r *Reader) pollState() {
	info, ok := r.active()
	if !ok {
		return
	}
	state := info.mapping.Read(joystickSource{info.joystick})
	state.Name = info.name
	r.system.SetState(state)
}
