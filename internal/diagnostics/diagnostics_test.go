package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domes/internal/trace"
)

type fakeSource struct {
	dropped uint32
	running int
}

func (f fakeSource) TraceDropped() uint32 { return f.dropped }
func (f fakeSource) TasksRunning() int    { return f.running }

func TestSampleRecordsOneEventPerCounter(t *testing.T) {
	rec := trace.NewRecorder()
	rec.Init(0)
	require.NoError(t, rec.SetEnabled(true))

	var now int64
	clock := func() int64 { return now }
	s := NewSampler(rec, fakeSource{dropped: 3, running: 2}, clock, 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.sample(now)
		close(done)
	}()
	<-done

	require.Equal(t, 3, rec.Len())
}
