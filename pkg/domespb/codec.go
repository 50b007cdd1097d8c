package domespb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec marshals domespb messages with encoding/json instead of the
// real protobuf wire format. It registers itself under the name "proto" —
// the content-subtype grpc-go selects by default — so
// RegisterFleetServiceServer and NewFleetServiceClient (fleet_grpc.go)
// need no extra dial/server option to take effect;
// every plain struct in this package travels as JSON on the wire.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
