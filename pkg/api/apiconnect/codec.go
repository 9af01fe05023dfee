// Package apiconnect wires the splitledger services to Connect handlers and
// clients. Messages are plain Go structs from package api, so every handler
// and client is configured with a JSON codec instead of the protobuf default.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodecName replaces Connect's built-in protojson codec, which only
// accepts generated protobuf messages.
const jsonCodecName = "json"

// JSONCodec marshals api messages with encoding/json.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return jsonCodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}
