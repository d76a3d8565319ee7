package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Block framing shared by both compressors: a one-byte tag (raw or
// lz4) and the four-byte big-endian uncompressed length, then the
// payload. The length prefix lets Decompress allocate exactly once.
const (
	tagRaw byte = 0
	tagLZ4 byte = 1

	blockHeaderLen = 5
)

func frame(tag byte, uncompressedLen int, payload []byte) []byte {
	out := make([]byte, blockHeaderLen+len(payload))
	out[0] = tag
	binary.BigEndian.PutUint32(out[1:5], uint32(uncompressedLen))
	copy(out[blockHeaderLen:], payload)
	return out
}

func parseFrame(data []byte) (tag byte, uncompressedLen int, payload []byte, err error) {
	if len(data) < blockHeaderLen {
		return 0, 0, nil, fmt.Errorf("compressed block too short: %d bytes", len(data))
	}
	return data[0], int(binary.BigEndian.Uint32(data[1:5])), data[blockHeaderLen:], nil
}

// NoCompressor stores blocks unchanged apart from the framing.
type NoCompressor struct{}

func (c *NoCompressor) Name() string {
	return "none"
}

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	return frame(tagRaw, len(data), data), nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	tag, size, payload, err := parseFrame(data)
	if err != nil {
		return nil, err
	}
	if tag != tagRaw {
		return nil, fmt.Errorf("unexpected block tag: %d", tag)
	}
	if size != len(payload) {
		return nil, fmt.Errorf("raw block length mismatch: header %d, payload %d", size, len(payload))
	}
	return append([]byte(nil), payload...), nil
}

// LZ4Compressor compresses blocks with LZ4. Blocks that do not shrink
// are stored raw.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string {
	return "lz4"
}

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return frame(tagRaw, 0, nil), nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		// Incompressible input.
		return frame(tagRaw, len(data), data), nil
	}
	return frame(tagLZ4, len(data), compressed[:n]), nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	tag, size, payload, err := parseFrame(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagRaw:
		if size != len(payload) {
			return nil, fmt.Errorf("raw block length mismatch: header %d, payload %d", size, len(payload))
		}
		return append([]byte(nil), payload...), nil
	case tagLZ4:
		decompressed := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, decompressed)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("lz4 block length mismatch: header %d, got %d", size, n)
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("unexpected block tag: %d", tag)
	}
}
