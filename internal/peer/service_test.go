package peer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domes/internal/drivers"
	"domes/internal/featuremask"
	"domes/internal/game"
	"domes/internal/mode"
)

func realClock() int64 { return time.Now().UnixMicro() }

// TestMasterSlaveDrillRoundTrip exercises phase 3a/3b end to end over a
// MemBus: the master arms the slave by MAC, the slave's touch pad fires,
// and the resulting TouchEvent makes it back to the master's round result.
func TestMasterSlaveDrillRoundTrip(t *testing.T) {
	bus := NewMemBus()
	macMaster := MAC{0x02, 0x01}
	macSlave := MAC{0x02, 0x02}
	radioMaster := bus.Join(macMaster)
	radioSlave := bus.Join(macSlave)

	slaveTouch := drivers.NewSimTouch(4)
	slaveLED := drivers.NewSimLED(8)
	slaveEngine := game.NewEngine(2, realClock, slaveTouch, game.FeedbackCallbacks{})
	slaveFSM := mode.NewFSM(&featuremask.Mask{}, realClock)
	slaveFSM.Transition(mode.Idle)
	slaveFSM.Transition(mode.Connected)
	slaveSvc := NewService(macSlave, radioSlave, realClock, slaveEngine, slaveLED, slaveFSM, nil)

	masterTouch := drivers.NewSimTouch(4)
	masterLED := drivers.NewSimLED(8)
	masterEngine := game.NewEngine(1, realClock, masterTouch, game.FeedbackCallbacks{})
	masterSvc := NewService(macMaster, radioMaster, realClock, masterEngine, masterLED, nil, nil)

	stopTick := make(chan struct{})
	defer close(stopTick)
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTick:
				return
			case <-ticker.C:
				slaveEngine.Tick()
				masterEngine.Tick()
			}
		}
	}()

	slaveStop := make(chan struct{})
	slaveDone := make(chan struct{})
	go func() {
		slaveSvc.RunSlave(func() bool {
			select {
			case <-slaveStop:
				return false
			default:
				return true
			}
		})
		close(slaveDone)
	}()

	go func() {
		time.Sleep(30 * time.Millisecond)
		slaveTouch.SetTouched(2, true)
	}()

	rounds := []RoundSpec{{TargetPeer: true, Color: drivers.RGBW{R: 10}, TimeoutMs: 200, FeedbackMode: game.FeedbackLED}}
	results := masterSvc.RunMaster(func() bool { return true }, macSlave, rounds)

	close(slaveStop)
	<-slaveDone

	require.Len(t, results, 1)
	require.Equal(t, OutcomeHit, results[0].Outcome)
	require.Equal(t, uint8(2), results[0].PadIndex)

	pixels := slaveLED.Pixels()
	require.Equal(t, uint8(10), pixels[0].R)
	require.Equal(t, mode.Connected, slaveFSM.Current())
}

func TestRunMasterLocalTargetRecordsMiss(t *testing.T) {
	masterTouch := drivers.NewSimTouch(4)
	masterLED := drivers.NewSimLED(8)
	masterEngine := game.NewEngine(1, realClock, masterTouch, game.FeedbackCallbacks{})
	fsm := mode.NewFSM(&featuremask.Mask{}, realClock)
	fsm.Transition(mode.Idle)
	fsm.Transition(mode.Connected)
	svc := NewService(MAC{0x03}, NewMemBus().Join(MAC{0x03}), realClock, masterEngine, masterLED, fsm, nil)

	stopTick := make(chan struct{})
	defer close(stopTick)
	go func() {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTick:
				return
			case <-ticker.C:
				masterEngine.Tick()
			}
		}
	}()

	rounds := []RoundSpec{{TargetPeer: false, TimeoutMs: 20, FeedbackMode: game.FeedbackLED}}
	results := svc.RunMaster(func() bool { return true }, MAC{}, rounds)

	require.Len(t, results, 1)
	require.Equal(t, OutcomeMiss, results[0].Outcome)
	require.Equal(t, mode.Connected, fsm.Current())
}
