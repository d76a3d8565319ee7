package grpc

import (
	"github.com/ugorji/go/codec"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype the query service speaks. Clients
// select it per call with grpc.CallContentSubtype(CodecName); the
// server resolves it from the request's content-type.
const CodecName = "cbor"

// cborHandle is shared by every marshal and unmarshal. Canonical
// ordering keeps encodings byte-stable across runs.
var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// cborCodec adapts ugorji's CBOR encoder to the grpc codec interface.
// The service's request and response types are plain structs; CBOR
// carries them without generated stubs.
type cborCodec struct{}

func (cborCodec) Marshal(v any) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func (cborCodec) Unmarshal(data []byte, v any) error {
	return codec.NewDecoderBytes(data, cborHandle).Decode(v)
}

func (cborCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(cborCodec{})
}
