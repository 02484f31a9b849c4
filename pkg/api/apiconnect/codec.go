// Package apiconnect wires the MoneySplit services to Connect: procedure
// names, handler constructors, typed clients and the JSON codec both sides use.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec encodes messages as JSON under the "json" codec name, so handlers
// accept Content-Type application/json and clients send it.
var Codec connect.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	// An empty body is an empty message.
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec)}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errUnimplemented(procedure))
}

type errUnimplemented string

func (e errUnimplemented) Error() string { return string(e) + " is not implemented" }
