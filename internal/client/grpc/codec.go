package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with the grpc-go runtime via
// encoding.RegisterCodec and selected with grpc.CallContentSubtype, letting
// this client speak gRPC's framing (length-prefixed messages, HTTP/2
// trailers, status codes) without a protoc-generated protobuf codec --
// there are no .proto files in this pack to generate one from, and
// rpcpb.Envelope's fields are plain Go structs rather than generated
// proto.Message types the built-in codec could serialize.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("grpc: json codec unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
