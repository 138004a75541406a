/*

Package lzss decompresses the small LZSS variant used to compress string
table snapshots embedded in TF2 demo files (spec.md §4.I). It is
intentionally minimal: a single Decompress function, no encoder, no
configurable window — the wire format is fixed.

Grounded on original_source/src/demo/lzss.rs (the demostf/parser Rust
implementation this spec was distilled from): a 4-byte little-endian target
length, followed by a stream of control bytes; each of the 8 bits of a
control byte (LSB first) selects either a literal byte or a back-reference
of (position, count) packed into 2 bytes.

*/
package lzss

import (
	"encoding/binary"
	"errors"
)

// ErrDecompressionFailed covers every way the bitstream can violate the
// format's invariants: truncated input, an invalid length-1 back-reference,
// an out-of-bounds back-reference, or output exceeding the declared target
// length.
var ErrDecompressionFailed = errors.New("lzss: decompression failed")

// Decompress decodes an LZSS blob as produced by a conforming compressor:
// input[0:4] is the little-endian target output length, the rest is the
// compressed payload. The returned slice is always exactly the target
// length long.
func Decompress(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, ErrDecompressionFailed
	}
	targetLen := int(binary.LittleEndian.Uint32(input[0:4]))

	output := make([]byte, 0, targetLen)
	pos := 4

	readByte := func() (byte, bool) {
		if pos >= len(input) {
			return 0, false
		}
		b := input[pos]
		pos++
		return b, true
	}

	for {
		if len(output) >= targetLen {
			return output[:targetLen], nil
		}

		cmdByte, ok := readByte()
		if !ok {
			return nil, ErrDecompressionFailed
		}

		for i := 0; i < 8; i++ {
			if len(output) >= targetLen {
				return output[:targetLen], nil
			}

			if cmdByte&0x01 == 0x01 {
				b1, ok := readByte()
				if !ok {
					return nil, ErrDecompressionFailed
				}
				b2, ok := readByte()
				if !ok {
					return nil, ErrDecompressionFailed
				}
				pos16 := (int(b1) << 4) | (int(b2) >> 4)
				count := int(b2&0x0f) + 1
				if count == 1 {
					return nil, ErrDecompressionFailed
				}
				if len(output)+count > targetLen {
					return nil, ErrDecompressionFailed
				}
				start := len(output) - pos16 - 1
				if start < 0 {
					return nil, ErrDecompressionFailed
				}
				for j := 0; j < count; j++ {
					output = append(output, output[start+j])
				}
			} else {
				b, ok := readByte()
				if !ok {
					return nil, ErrDecompressionFailed
				}
				output = append(output, b)
			}
			cmdByte >>= 1
		}
	}
}
