// Package rpc defines the wire surface shared by the permavault client and
// server: request and response messages, a JSON codec registered with gRPC,
// the service descriptor and a typed client stub.
//
// Messages are plain Go structs encoded as JSON. Clients select the codec
// by content subtype, so the server needs nothing beyond importing this
// package.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype ("application/grpc+json").
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
