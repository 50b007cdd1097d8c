// Command podsim runs one simulated DOMES pod: the mode/game/trace/OTA
// core wired to in-memory "sim" drivers, reachable over TCP (for the
// fleet gateway and podmon) and UDP (for peer discovery with other
// podsim instances), the way the teacher's cmd/driver/hasher-host wires
// its Orchestrator against either a real ASIC or a simulated one behind
// the same interface.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domes/internal/dispatch"
	"domes/internal/diagnostics"
	"domes/internal/drivers"
	"domes/internal/featuremask"
	"domes/internal/game"
	"domes/internal/kvstore"
	"domes/internal/mode"
	"domes/internal/ota"
	"domes/internal/peer"
	"domes/internal/protocol"
	"domes/internal/taskmanager"
	"domes/internal/trace"
	"domes/internal/transport"
)

func main() {
	podID := flag.Int("pod-id", 1, "pod identifier (0-255)")
	macHex := flag.String("mac", "02:01:00:00:00:01", "colon-hex MAC, must be unique per pod")
	tcpAddr := flag.String("tcp-addr", ":9100", "address the fleet gateway/podmon dial")
	udpAddr := flag.String("udp-addr", ":9200", "local UDP address for peer discovery")
	udpBroadcast := flag.String("udp-broadcast", "255.255.255.255:9200", "broadcast address for peer discovery")
	padCount := flag.Int("pads", 4, "number of simulated touch pads")
	flag.Parse()

	logger := log.New(os.Stdout, fmt.Sprintf("[pod %d] ", *podID), log.LstdFlags|log.Lmicroseconds)

	mac, err := parseMAC(*macHex)
	if err != nil {
		logger.Fatalf("invalid -mac: %v", err)
	}

	clock := func() int64 { return time.Now().UnixMicro() }

	led := drivers.NewSimLED(16)
	touch := drivers.NewSimTouch(*padCount)
	haptic := drivers.NewSimHaptic()
	audio := drivers.NewSimAudio()
	_ = haptic
	_ = audio

	mask := &featuremask.Mask{}
	fsm := mode.NewFSM(mask, clock)

	engine := game.NewEngine(uint8(*podID), clock, touch, game.FeedbackCallbacks{
		FlashWhite: func() { led.SetAll(drivers.RGBW{R: 255, G: 255, B: 255, W: 255}); _ = led.Refresh() },
		FlashRed:   func() { led.SetAll(drivers.RGBW{R: 255}); _ = led.Refresh() },
	})

	recorder := trace.NewRecorder()
	recorder.Init(0)
	_ = recorder.SetEnabled(true)

	store := kvstore.NewMemStore()
	partition := drivers.NewSimPartition()
	otaSession := ota.NewSession(partition)

	tasks := taskmanager.New(logger)

	tasks.Spawn("game-tick", func(shouldRun func() bool) {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for shouldRun() {
			<-ticker.C
			engine.Tick()
		}
	})

	tasks.Spawn("diagnostics", diagnostics.NewSampler(recorder, diagnostics.TaskManagerSource{Tasks: tasks, Recorder: recorder}, clock, diagnostics.DefaultPeriod).Run)

	router := dispatch.NewRouter(logger)
	wireOtaHandler(router, otaSession)
	wireConfigHandler(router, mask, engine, store)
	wireTraceHandler(router, recorder)

	ln, err := net.Listen("tcp", *tcpAddr)
	if err != nil {
		logger.Fatalf("listen %s: %v", *tcpAddr, err)
	}
	logger.Printf("listening for host/fleet connections on %s", *tcpAddr)

	tasks.Spawn("tcp-accept", func(shouldRun func() bool) {
		for shouldRun() {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			t := transport.NewTCPTransportFromConn(conn)
			loop := dispatch.NewLoop(t, router, logger)
			go loop.Run(shouldRun)
		}
	})

	dg := transport.NewDatagramTransport(*udpAddr, *udpBroadcast)
	if err := dg.Init(); err != nil {
		logger.Fatalf("udp init %s: %v", *udpAddr, err)
	}
	radio := peer.NewDatagramRadio(dg, mac)
	svc := peer.NewService(mac, radio, clock, engine, led, fsm, logger)

	fsm.Transition(mode.Idle)

	tasks.Spawn("peer-service", func(shouldRun func() bool) {
		peerMAC, isMaster, ok := svc.Discover(shouldRun)
		if !ok {
			logger.Printf("no peer found, staying pre-game")
			return
		}
		fsm.Transition(mode.Connected)
		if isMaster {
			logger.Printf("elected master against %s", peerMAC)
			rounds := []peer.RoundSpec{
				{TargetPeer: true, Color: drivers.RGBW{G: 255}, TimeoutMs: 3000, FeedbackMode: game.FeedbackLED | game.FeedbackAudio},
				{TargetPeer: false, Color: drivers.RGBW{B: 255}, TimeoutMs: 3000, FeedbackMode: game.FeedbackLED},
			}
			results := svc.RunMaster(shouldRun, peerMAC, rounds)
			for i, r := range results {
				logger.Printf("round %d: %+v", i, r)
			}
		} else {
			logger.Printf("elected slave under %s", peerMAC)
			svc.RunSlave(shouldRun)
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	if tasks.Shutdown() {
		logger.Printf("shutdown timed out waiting for a task")
	}
	_ = ln.Close()
}

func parseMAC(s string) (peer.MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != 6 {
		return peer.MAC{}, fmt.Errorf("expected 6-byte colon-hex MAC, got %q", s)
	}
	var mac peer.MAC
	copy(mac[:], hw)
	return mac, nil
}

// wireOtaHandler drives session from OTA frames and, for every frame it
// accepts, hands back a fully framed TypeOtaAck reply (status:u8 | nextOffset:u32, per §4.2) —
// dispatch.Loop.Run sends whatever a Handler returns straight to the
// transport with no framing of its own, so every reply must already be a
// protocol.EncodeAlloc'd frame.
func wireOtaHandler(router *dispatch.Router, session *ota.Session) {
	router.SetOtaHandler(func(f dispatch.Frame) ([]byte, error) {
		var reply ota.AckReply
		switch f.Type {
		case protocol.TypeOtaBegin:
			if len(f.Payload) < 41 {
				return nil, fmt.Errorf("podsim: short OtaBegin payload")
			}
			var req ota.BeginRequest
			req.Size = binary.LittleEndian.Uint32(f.Payload[0:4])
			copy(req.SHA256[:], f.Payload[4:36])
			req.Version = string(f.Payload[36:])
			reply = session.Begin(req)
		case protocol.TypeOtaData:
			if len(f.Payload) < 6 {
				return nil, fmt.Errorf("podsim: short OtaData payload")
			}
			n := int(binary.LittleEndian.Uint16(f.Payload[4:6]))
			if len(f.Payload) < 6+n {
				return nil, fmt.Errorf("podsim: OtaData len %d exceeds payload", n)
			}
			reply = session.Data(ota.DataChunk{
				Offset: binary.LittleEndian.Uint32(f.Payload[0:4]),
				Bytes:  f.Payload[6 : 6+n],
			})
		case protocol.TypeOtaEnd:
			reply = session.End()
		case protocol.TypeOtaAbort:
			session.Abort()
			return protocol.EncodeAlloc(protocol.TypeOtaAck, []byte{byte(ota.StatusAborted), 0, 0, 0, 0})
		default:
			return nil, fmt.Errorf("podsim: unhandled OTA frame type 0x%02x", f.Type)
		}
		out := make([]byte, 5)
		out[0] = byte(reply.Status)
		binary.LittleEndian.PutUint32(out[1:5], reply.NextOffset)
		return protocol.EncodeAlloc(protocol.TypeOtaAck, out)
	})
}

// wireConfigHandler implements the §6 config messages over the featuremask
// and game engine, persisting feature toggles to store's "config"
// namespace the way original_source's feature manager survives them
// across boots. Every reply is framed with protocol.EncodeAlloc, matching
// the convention dispatch_test.go documents for every Handler in this
// tree.
func wireConfigHandler(router *dispatch.Router, mask *featuremask.Mask, engine *game.Engine, store kvstore.Store) {
	cfg, err := store.Open("config")
	if err != nil {
		panic(fmt.Sprintf("podsim: open config namespace: %v", err))
	}

	router.SetConfigHandler(func(f dispatch.Frame) ([]byte, error) {
		switch f.Type {
		case protocol.TypeConfigArmReq:
			if len(f.Payload) < 5 {
				return nil, fmt.Errorf("podsim: short ArmReq payload")
			}
			timeoutMs := binary.LittleEndian.Uint32(f.Payload[0:4])
			feedbackMode := f.Payload[4]
			engine.Arm(game.ArmConfig{TimeoutMs: timeoutMs, FeedbackMode: feedbackMode})
			return protocol.EncodeAlloc(protocol.TypeConfigArmRsp, []byte{1})

		case protocol.TypeConfigListFeaturesReq:
			states := mask.GetAll()
			out := make([]byte, 2, 2+2*len(states))
			out[0] = byte(featuremask.StatusOk)
			out[1] = byte(len(states))
			for _, s := range states {
				out = append(out, byte(s.Feature), boolToU8(s.Enabled))
			}
			return protocol.EncodeAlloc(protocol.TypeConfigListFeaturesRsp, out)

		case protocol.TypeConfigSetFeatureReq:
			if len(f.Payload) < 2 {
				return nil, fmt.Errorf("podsim: short SetFeature payload")
			}
			feature := featuremask.Feature(f.Payload[0])
			enabled := f.Payload[1] != 0
			status := featuremask.StatusOk
			if !featuremask.Valid(feature) {
				status = featuremask.StatusInvalidFeature
			} else {
				mask.SetEnabled(feature, enabled)
				if err := cfg.SetU8(fmt.Sprintf("feature_%d", feature), boolToU8(enabled)); err != nil {
					status = featuremask.StatusError
				} else if err := cfg.Commit(); err != nil {
					status = featuremask.StatusError
				}
			}
			return protocol.EncodeAlloc(protocol.TypeConfigSetFeatureRsp, []byte{byte(status), byte(feature), boolToU8(enabled)})

		case protocol.TypeConfigGetFeatureReq:
			if len(f.Payload) < 1 {
				return nil, fmt.Errorf("podsim: short GetFeature payload")
			}
			feature := featuremask.Feature(f.Payload[0])
			if !featuremask.Valid(feature) {
				return protocol.EncodeAlloc(protocol.TypeConfigGetFeatureRsp, []byte{byte(featuremask.StatusInvalidFeature), byte(feature), 0})
			}
			enabled := mask.IsEnabled(feature)
			return protocol.EncodeAlloc(protocol.TypeConfigGetFeatureRsp, []byte{byte(featuremask.StatusOk), byte(feature), boolToU8(enabled)})

		default:
			return nil, fmt.Errorf("podsim: unhandled config frame type 0x%02x", f.Type)
		}
	})
}

func boolToU8(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// wireTraceHandler implements the §4.7 dump protocol plus
// start/stop/clear, so the fleet gateway's TraceDump RPC is reachable
// end-to-end against a running pod instead of only exercised by
// trace_test.go in isolation. TypeTraceDump's reply is the full
// Metadata/Data.../End sequence, each frame independently encoded with
// protocol.EncodeAlloc and concatenated — dispatch.Loop.Run writes
// whatever a Handler returns in one Send, and the streaming decoder on
// the far end resyncs across consecutive frames in one read the same way
// it does across multiple transport reads.
func wireTraceHandler(router *dispatch.Router, recorder *trace.Recorder) {
	router.SetTraceHandler(func(f dispatch.Frame) ([]byte, error) {
		switch f.Type {
		case protocol.TypeTraceDump:
			sink := &framedSink{}
			if err := recorder.Export(sink); err != nil {
				return nil, fmt.Errorf("podsim: trace export: %w", err)
			}
			return sink.buf, nil
		case protocol.TypeTraceStart:
			_ = recorder.SetEnabled(true)
			return protocol.EncodeAlloc(protocol.TypeTraceAck, []byte{0})
		case protocol.TypeTraceStop:
			_ = recorder.SetEnabled(false)
			return protocol.EncodeAlloc(protocol.TypeTraceAck, []byte{0})
		case protocol.TypeTraceClear:
			if err := recorder.Export(&discardSink{}); err != nil {
				return nil, fmt.Errorf("podsim: trace clear: %w", err)
			}
			return protocol.EncodeAlloc(protocol.TypeTraceAck, []byte{0})
		default:
			return nil, fmt.Errorf("podsim: unhandled trace frame type 0x%02x", f.Type)
		}
	})
}

// framedSink implements trace.ExportSink by encoding each frame kind with
// protocol.EncodeAlloc and appending it to buf, in order. The metadata
// frame carries TypeTraceStatus (the dump's summary, not raw samples);
// data chunks carry TypeTraceData; the close carries TypeTraceEnd.
type framedSink struct {
	buf []byte
}

func (s *framedSink) Metadata(m trace.MetadataFrame) error {
	return s.append(protocol.TypeTraceStatus, m.MarshalBinary())
}

func (s *framedSink) Data(d trace.DataFrame) error {
	return s.append(protocol.TypeTraceData, d.MarshalBinary())
}

func (s *framedSink) End(e trace.EndFrame) error {
	return s.append(protocol.TypeTraceEnd, e.MarshalBinary())
}

func (s *framedSink) append(frameType byte, payload []byte) error {
	frame, err := protocol.EncodeAlloc(frameType, payload)
	if err != nil {
		return err
	}
	s.buf = append(s.buf, frame...)
	return nil
}

// discardSink satisfies trace.ExportSink without emitting anything, so
// TypeTraceClear can reuse Recorder.Export's drain-and-reset behaviour
// without sending a dump to a host that never asked for one.
type discardSink struct{}

func (discardSink) Metadata(trace.MetadataFrame) error { return nil }
func (discardSink) Data(trace.DataFrame) error         { return nil }
func (discardSink) End(trace.EndFrame) error           { return nil }
