package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	meta MetadataFrame
	data []DataFrame
	end  EndFrame
}

func (s *recordingSink) Metadata(m MetadataFrame) error { s.meta = m; return nil }
func (s *recordingSink) Data(d DataFrame) error         { s.data = append(s.data, d); return nil }
func (s *recordingSink) End(e EndFrame) error           { s.end = e; return nil }

func TestRecordUnderEnabledIsContiguousSuffix(t *testing.T) {
	r := NewRecorder()
	r.Init(DefaultBufferBytes)
	require.NoError(t, r.SetEnabled(true))

	for i := uint32(0); i < 5; i++ {
		r.Record(Event{TimestampUs: i, EventType: EventInstant})
	}

	sink := &recordingSink{}
	require.NoError(t, r.Export(sink))
	require.Equal(t, uint32(5), sink.meta.EventCount)
	require.Len(t, sink.data, 1)
	for i, ev := range sink.data[0].Events {
		require.Equal(t, uint32(i), ev.TimestampUs)
	}
}

func TestRecordDropsWhenDisabled(t *testing.T) {
	r := NewRecorder()
	r.Init(DefaultBufferBytes)
	r.Record(Event{TimestampUs: 1})
	require.Equal(t, 0, r.Len())
}

func TestRecordDropsWhenRingFull(t *testing.T) {
	r := NewRecorder()
	r.Init(EventSize * 2) // capacity 2
	require.NoError(t, r.SetEnabled(true))
	r.Record(Event{TimestampUs: 1})
	r.Record(Event{TimestampUs: 2})
	r.Record(Event{TimestampUs: 3}) // dropped
	require.Equal(t, uint32(1), r.DroppedCount())
	require.Equal(t, 2, r.Len())
}

func TestDumpChecksumMatchesSpecScenario(t *testing.T) {
	r := NewRecorder()
	r.Init(DefaultBufferBytes)
	require.NoError(t, r.SetEnabled(true))

	events := []Event{
		{EventType: EventCounter, Arg1: 0x01020304},
		{EventType: EventCounter, Arg1: 0x05060708},
		{EventType: EventCounter, Arg1: 0x090A0B0C},
	}
	for _, ev := range events {
		r.Record(ev)
	}
	require.NoError(t, r.SetEnabled(false))

	sink := &recordingSink{}
	require.NoError(t, r.Export(sink))
	require.Equal(t, uint32(3), sink.end.TotalEvents)
	require.Equal(t, ChecksumEvents(events), sink.end.Checksum)
}

func TestOperationsOnUninitializedRecorderFail(t *testing.T) {
	r := NewRecorder()
	require.ErrorIs(t, r.SetEnabled(true), ErrNotInitialized)
	require.ErrorIs(t, r.RegisterTask(1, "game"), ErrNotInitialized)
}

func TestRegisterTaskUpdatesInPlace(t *testing.T) {
	r := NewRecorder()
	r.Init(DefaultBufferBytes)
	require.NoError(t, r.RegisterTask(1, "game_tick"))
	require.NoError(t, r.RegisterTask(1, "game_tick_renamed"))
	require.Len(t, r.order, 1)
}

func TestRegisterTaskTableFull(t *testing.T) {
	r := NewRecorder()
	r.Init(DefaultBufferBytes)
	for i := uint16(0); i < maxTaskEntries; i++ {
		require.NoError(t, r.RegisterTask(i, "t"))
	}
	require.Error(t, r.RegisterTask(maxTaskEntries, "overflow"))
}
