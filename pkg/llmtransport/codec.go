package llmtransport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered as a gRPC content-subtype ("application/grpc+json"
// on the wire) and selected per-call via grpc.CallContentSubtype. AAv3 has no
// .proto/.pb.go generated message types to hand the standard proto codec, so
// every wire message here is a plain JSON-tagged struct instead.
const jsonCodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return jsonCodecName }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
