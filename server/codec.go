package server

import (
	"github.com/chazu/ribbon/wire"
)

// cborCodec lets Connect handlers and clients speak canonical CBOR
// instead of protobuf. The codec name selects the content type, so
// requests travel as application/cbor.
type cborCodec struct{}

// Name implements connect.Codec.
func (cborCodec) Name() string { return "cbor" }

// Marshal implements connect.Codec.
func (cborCodec) Marshal(v any) ([]byte, error) {
	return wire.Marshal(v)
}

// Unmarshal implements connect.Codec.
func (cborCodec) Unmarshal(data []byte, v any) error {
	return wire.Unmarshal(data, v)
}
