// Package domespb carries the fleet gateway's wire message types, in the
// generated-pb shape the teacher's internal/proto/hasher/v1 package has
// (plain structs, one file per concern, JSON-tagged fields) without a
// protoc codegen step: no toolchain in this build produces internal/proto
// here, so the structs are hand-written and paired with a codec (codec.go)
// that marshals them without requiring the real google.golang.org/protobuf
// proto.Message interface.
package domespb

// PodSummary is one pod's current state as seen by the fleet gateway.
type PodSummary struct {
	PodID       uint8  `json:"podId"`
	Mac         string `json:"mac"`
	Mode        string `json:"mode"`
	Connected   bool   `json:"connected"`
	LastSeenUs  int64  `json:"lastSeenUs"`
	FirmwareVer string `json:"firmwareVer"`
}

// ListPodsRequest has no fields; every known pod is returned.
type ListPodsRequest struct{}

// ListPodsResponse lists every pod the gateway currently tracks.
type ListPodsResponse struct {
	Pods []*PodSummary `json:"pods"`
}

// ArmPodRequest requests that the gateway arm one pod. The gateway relays
// it as a TypeConfigArmReq frame over the pod's wired transport, not as a
// peer-service ArmTouch; its fields mirror the ArmTouch message body (§6).
type ArmPodRequest struct {
	PodID        uint8  `json:"podId"`
	TimeoutMs    uint32 `json:"timeoutMs"`
	FeedbackMode uint8  `json:"feedbackMode"`
}

// ArmPodResponse reports whether the relay reached the pod.
type ArmPodResponse struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// TraceDumpRequest requests a trace export from one pod.
type TraceDumpRequest struct {
	PodID uint8 `json:"podId"`
}

// TraceDumpResponse carries the raw 16-byte trace events, still packed,
// so the caller can decode with trace.UnmarshalEvent.
type TraceDumpResponse struct {
	PodID        uint8  `json:"podId"`
	Events       []byte `json:"events"`
	DroppedCount uint32 `json:"droppedCount"`
}

// GetHostStatsRequest has no fields.
type GetHostStatsRequest struct{}

// GetHostStatsResponse carries the gateway host's own resource usage,
// sampled via gopsutil, for the /healthz surface.
type GetHostStatsResponse struct {
	UptimeSeconds uint64 `json:"uptimeSeconds"`
	// LoadAverage1M holds the host's overall CPU utilisation percentage
	// (gopsutil cpu.Percent), not a load average.
	LoadAverage1M  float64 `json:"loadAverage1m"`
	MemUsedPercent float64 `json:"memUsedPercent"`
	PodCount       uint32  `json:"podCount"`
}
