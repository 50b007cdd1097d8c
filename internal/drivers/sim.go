package drivers

import (
	"errors"
	"sync"
)

var (
	errIndexOutOfRange = errors.New("drivers: index out of range")
	errNotStarted      = errors.New("drivers: audio not started")
)

// SimLED is an in-memory LED implementation for cmd/podsim and tests: it
// records pixel state instead of driving a real addressable strip.
type SimLED struct {
	mu         sync.Mutex
	pixels     []RGBW
	brightness uint8
	refreshes  int
}

// NewSimLED returns a SimLED with count pixels, all off.
func NewSimLED(count int) *SimLED {
	return &SimLED{pixels: make([]RGBW, count), brightness: 255}
}

func (l *SimLED) Init() error { return nil }

func (l *SimLED) SetPixel(index int, c RGBW) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.pixels) {
		return errIndexOutOfRange
	}
	l.pixels[index] = c
	return nil
}

func (l *SimLED) SetAll(c RGBW) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.pixels {
		l.pixels[i] = c
	}
}

func (l *SimLED) Clear() { l.SetAll(RGBW{}) }

func (l *SimLED) Refresh() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshes++
	return nil
}

func (l *SimLED) SetBrightness(level uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.brightness = level
}

func (l *SimLED) LedCount() int { return len(l.pixels) }

// Pixels returns a snapshot of the current pixel state, for tests.
func (l *SimLED) Pixels() []RGBW {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]RGBW, len(l.pixels))
	copy(cp, l.pixels)
	return cp
}

// SimTouch is an in-memory Touch implementation: tests drive it directly
// by calling SetTouched instead of reading real capacitive pads.
type SimTouch struct {
	mu      sync.Mutex
	touched []bool
	state   []uint16
}

// NewSimTouch returns a SimTouch with padCount pads, all untouched.
func NewSimTouch(padCount int) *SimTouch {
	return &SimTouch{touched: make([]bool, padCount), state: make([]uint16, padCount)}
}

func (t *SimTouch) Init() error { return nil }
func (t *SimTouch) Update()     {}

func (t *SimTouch) IsTouched(pad int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pad < 0 || pad >= len(t.touched) {
		return false
	}
	return t.touched[pad]
}

func (t *SimTouch) GetPadState(pad int) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pad < 0 || pad >= len(t.state) {
		return 0
	}
	return t.state[pad]
}

func (t *SimTouch) PadCount() int { return len(t.touched) }

func (t *SimTouch) Calibrate() error { return nil }

// SetTouched lets a test or simulated physical event drive pad state.
func (t *SimTouch) SetTouched(pad int, touched bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pad < 0 || pad >= len(t.touched) {
		return
	}
	t.touched[pad] = touched
	if touched {
		t.state[pad] = 0xFFFF
	} else {
		t.state[pad] = 0
	}
}

// SimIMU is an in-memory IMU implementation.
type SimIMU struct {
	mu            sync.Mutex
	accel         Accel
	tapDetected   bool
	singleEnabled bool
	doubleEnabled bool
}

// NewSimIMU returns a SimIMU at rest (0, 0, 1g).
func NewSimIMU() *SimIMU {
	return &SimIMU{accel: Accel{X: 0, Y: 0, Z: 1}}
}

func (i *SimIMU) Init() error { return nil }

func (i *SimIMU) ReadAccel() (Accel, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.accel, nil
}

func (i *SimIMU) EnableTapDetection(single, double bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.singleEnabled = single
	i.doubleEnabled = double
}

func (i *SimIMU) IsTapDetected() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tapDetected
}

func (i *SimIMU) ClearInterrupt() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tapDetected = false
}

// SetAccel lets a test drive a new reading.
func (i *SimIMU) SetAccel(a Accel) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.accel = a
}

// Tap lets a test simulate a detected tap, respecting the enabled flags.
func (i *SimIMU) Tap() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.singleEnabled || i.doubleEnabled {
		i.tapDetected = true
	}
}

// SimHaptic is an in-memory Haptic implementation.
type SimHaptic struct {
	mu         sync.Mutex
	playing    bool
	intensity  uint8
	lastEffect uint8
	history    []uint8
}

// NewSimHaptic returns a SimHaptic at rest, full intensity.
func NewSimHaptic() *SimHaptic {
	return &SimHaptic{intensity: 100}
}

func (h *SimHaptic) Init() error { return nil }

func (h *SimHaptic) PlayEffect(effectID uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	h.lastEffect = effectID
	h.history = append(h.history, effectID)
	return nil
}

func (h *SimHaptic) PlaySequence(effects []uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	h.history = append(h.history, effects...)
	if len(effects) > 0 {
		h.lastEffect = effects[len(effects)-1]
	}
	return nil
}

func (h *SimHaptic) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
}

func (h *SimHaptic) SetIntensity(percent uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.intensity = percent
}

func (h *SimHaptic) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// History returns every effect ID played, in order, for tests.
func (h *SimHaptic) History() []uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]uint8, len(h.history))
	copy(cp, h.history)
	return cp
}

// SimAudio is an in-memory Audio implementation.
type SimAudio struct {
	mu      sync.Mutex
	started bool
	volume  uint8
	written int
}

// NewSimAudio returns a stopped SimAudio at half volume.
func NewSimAudio() *SimAudio {
	return &SimAudio{volume: 50}
}

func (a *SimAudio) Init() error { return nil }

func (a *SimAudio) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = true
	return nil
}

func (a *SimAudio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = false
}

func (a *SimAudio) Write(samples []int16, timeoutMs int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return 0, errNotStarted
	}
	a.written += len(samples)
	return len(samples), nil
}

func (a *SimAudio) SetVolume(percent uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = percent
}

func (a *SimAudio) IsStarted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// WrittenSamples returns the total sample count written, for tests.
func (a *SimAudio) WrittenSamples() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}
