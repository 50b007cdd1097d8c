package taskmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSpawnedTaskStopsOnRequestStop(t *testing.T) {
	m := New(nil)
	iterations := 0
	m.Spawn("ticker", func(shouldRun func() bool) {
		for shouldRun() {
			iterations++
			time.Sleep(time.Millisecond)
		}
	})

	time.Sleep(10 * time.Millisecond)
	timedOut := m.Shutdown()
	require.False(t, timedOut)
	require.Greater(t, iterations, 0)
	require.Empty(t, m.Running())
}

func TestShutdownTimesOutOnStuckTask(t *testing.T) {
	m := New(nil)
	m.SetJoinTimeout(20 * time.Millisecond)
	release := make(chan struct{})
	m.Spawn("stuck", func(shouldRun func() bool) {
		<-release
	})

	timedOut := m.Shutdown()
	require.True(t, timedOut)
	close(release)
}

func TestRunningReflectsLiveTasks(t *testing.T) {
	m := New(nil)
	done := make(chan struct{})
	m.Spawn("short", func(shouldRun func() bool) {
		<-done
	})
	require.Contains(t, m.Running(), "short")
	close(done)
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, m.Running())
}
