package drivers

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	_ LED       = (*SimLED)(nil)
	_ Touch     = (*SimTouch)(nil)
	_ IMU       = (*SimIMU)(nil)
	_ Haptic    = (*SimHaptic)(nil)
	_ Audio     = (*SimAudio)(nil)
	_ Partition = (*SimPartition)(nil)
)

func TestSimLEDSetAllAndPixel(t *testing.T) {
	led := NewSimLED(8)
	led.SetAll(RGBW{R: 1, G: 2, B: 3, W: 4})
	require.NoError(t, led.SetPixel(0, RGBW{R: 9}))
	pixels := led.Pixels()
	require.Equal(t, RGBW{R: 9}, pixels[0])
	require.Equal(t, RGBW{R: 1, G: 2, B: 3, W: 4}, pixels[1])
	require.Error(t, led.SetPixel(99, RGBW{}))
}

func TestSimTouchReflectsSetTouched(t *testing.T) {
	touch := NewSimTouch(4)
	require.False(t, touch.IsTouched(2))
	touch.SetTouched(2, true)
	require.True(t, touch.IsTouched(2))
	require.Equal(t, uint16(0xFFFF), touch.GetPadState(2))
}

func TestSimHapticTracksHistory(t *testing.T) {
	h := NewSimHaptic()
	require.NoError(t, h.PlayEffect(3))
	require.NoError(t, h.PlaySequence([]uint8{1, 2}))
	require.Equal(t, []uint8{3, 1, 2}, h.History())
	require.True(t, h.IsPlaying())
	h.Stop()
	require.False(t, h.IsPlaying())
}

func TestSimAudioWriteRequiresStart(t *testing.T) {
	a := NewSimAudio()
	_, err := a.Write([]int16{1, 2, 3}, 0)
	require.Error(t, err)
	require.NoError(t, a.Start())
	n, err := a.Write([]int16{1, 2, 3}, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, a.WrittenSamples())
}

func TestSimIMUTapRequiresEnabled(t *testing.T) {
	imu := NewSimIMU()
	imu.Tap()
	require.False(t, imu.IsTapDetected())
	imu.EnableTapDetection(true, false)
	imu.Tap()
	require.True(t, imu.IsTapDetected())
	imu.ClearInterrupt()
	require.False(t, imu.IsTapDetected())
}

func TestSimPartitionOTALifecycle(t *testing.T) {
	p := NewSimPartition()
	alt, err := p.GetAlternate()
	require.NoError(t, err)
	require.Equal(t, PartitionOtaA, alt)

	h, err := p.BeginWriter(alt, 4)
	require.NoError(t, err)
	require.NoError(t, p.Write(h, []byte{1, 2, 3, 4}))

	sum := sha256.Sum256([]byte{1, 2, 3, 4})
	require.NoError(t, p.Commit(h, sum))
	require.NoError(t, p.SetBoot(alt))
	require.Equal(t, alt, p.ActiveSlot)
}
