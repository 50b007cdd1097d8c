package fleet

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	"domes/internal/protocol"
	"domes/pkg/domespb"
)

// requestTimeout bounds every gateway-to-pod round trip.
const requestTimeout = 2 * time.Second

// Gateway implements domespb.FleetServiceServer, fanning requests out to
// whichever PodLink the request names. It holds no game/mode/trace state
// of its own: ArmPod and TraceDump are live round trips to the named pod,
// the way the teacher's ASICDevice (internal/driver/host/bridge.go) is a
// thin gRPC-client wrapper rather than a cache, while ListPods reports
// each PodLink's recorded mode and last-seen time without contacting the
// pods.
type Gateway struct {
	domespb.UnimplementedFleetServiceServer

	logger *log.Logger

	mu   sync.RWMutex
	pods map[uint8]*PodLink
}

// NewGateway returns an empty Gateway.
func NewGateway(logger *log.Logger) *Gateway {
	return &Gateway{logger: logger, pods: make(map[uint8]*PodLink)}
}

// AddPod registers a pod link, replacing any existing entry for the same
// PodID.
func (g *Gateway) AddPod(link *PodLink) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pods[link.PodID] = link
}

// RemovePod drops a pod link.
func (g *Gateway) RemovePod(podID uint8) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pods, podID)
}

func (g *Gateway) pod(podID uint8) (*PodLink, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.pods[podID]
	return p, ok
}

func (g *Gateway) allPods() []*PodLink {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*PodLink, 0, len(g.pods))
	for _, p := range g.pods {
		out = append(out, p)
	}
	return out
}

func (g *Gateway) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}

// ListPods implements domespb.FleetServiceServer.
func (g *Gateway) ListPods(_ context.Context, _ *domespb.ListPodsRequest) (*domespb.ListPodsResponse, error) {
	pods := g.allPods()
	resp := &domespb.ListPodsResponse{Pods: make([]*domespb.PodSummary, 0, len(pods))}
	for _, p := range pods {
		resp.Pods = append(resp.Pods, &domespb.PodSummary{
			PodID:       p.PodID,
			Mac:         p.Mac,
			Mode:        p.Mode(),
			Connected:   p.Connected(),
			LastSeenUs:  p.LastSeen().UnixMicro(),
			FirmwareVer: p.FirmwareVer,
		})
	}
	return resp, nil
}

// ArmPod implements domespb.FleetServiceServer: it relays an arm request
// over the wired transport via TypeConfigArmReq (§4.6), distinct from the
// radio-borne ArmTouch peers exchange with each other.
func (g *Gateway) ArmPod(_ context.Context, req *domespb.ArmPodRequest) (*domespb.ArmPodResponse, error) {
	p, ok := g.pod(req.PodID)
	if !ok {
		return &domespb.ArmPodResponse{Accepted: false, Error: fmt.Sprintf("pod %d not registered", req.PodID)}, nil
	}

	payload := make([]byte, 5)
	binary.LittleEndian.PutUint32(payload[0:4], req.TimeoutMs)
	payload[4] = req.FeedbackMode

	if err := p.sendFrame(protocol.TypeConfigArmReq, payload); err != nil {
		g.logf("fleet: arm pod %d: %v", req.PodID, err)
		return &domespb.ArmPodResponse{Accepted: false, Error: err.Error()}, nil
	}

	frameType, body, err := p.recvFrame(requestTimeout)
	if err != nil {
		return &domespb.ArmPodResponse{Accepted: false, Error: err.Error()}, nil
	}
	if frameType != protocol.TypeConfigArmRsp || len(body) < 1 {
		return &domespb.ArmPodResponse{Accepted: false, Error: "malformed arm response"}, nil
	}
	return &domespb.ArmPodResponse{Accepted: body[0] != 0}, nil
}

// TraceDump implements domespb.FleetServiceServer: it drives the §8
// dump/metadata/data/end exchange against one pod and concatenates the
// returned event bytes, still packed, for the caller to decode.
func (g *Gateway) TraceDump(_ context.Context, req *domespb.TraceDumpRequest) (*domespb.TraceDumpResponse, error) {
	p, ok := g.pod(req.PodID)
	if !ok {
		return nil, fmt.Errorf("fleet: pod %d not registered", req.PodID)
	}

	if err := p.sendFrame(protocol.TypeTraceDump, nil); err != nil {
		return nil, err
	}

	_, meta, err := p.recvFrame(requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("fleet: trace metadata from pod %d: %w", req.PodID, err)
	}
	if len(meta) < 16 {
		return nil, fmt.Errorf("fleet: pod %d: truncated trace metadata frame", req.PodID)
	}
	droppedCount := binary.LittleEndian.Uint32(meta[4:8])
	eventCount := binary.LittleEndian.Uint32(meta[0:4])

	events := make([]byte, 0, eventCount*16)
	for {
		frameType, body, err := p.recvFrame(requestTimeout)
		if err != nil {
			return nil, fmt.Errorf("fleet: trace data from pod %d: %w", req.PodID, err)
		}
		if frameType == protocol.TypeTraceEnd {
			break
		}
		if frameType != protocol.TypeTraceData || len(body) < 6 {
			continue
		}
		count := binary.LittleEndian.Uint16(body[4:6])
		events = append(events, body[6:6+int(count)*16]...)
	}

	return &domespb.TraceDumpResponse{PodID: req.PodID, Events: events, DroppedCount: droppedCount}, nil
}

// GetHostStats implements domespb.FleetServiceServer.
func (g *Gateway) GetHostStats(ctx context.Context, _ *domespb.GetHostStatsRequest) (*domespb.GetHostStatsResponse, error) {
	stats, err := sampleHostStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.PodCount = uint32(len(g.allPods()))
	return stats, nil
}
