// This file implements the demo header decode (spec.md §3 Header, §4
// preamble), grounded on icza-screp/repparser/repparser.go's parseHeader
// (fixed-offset byte-aligned field reads off a single flat buffer).

package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

const fixedStringFieldLen = 260

func decodeHeader(r *bitstream.Reader) (*demo.Header, error) {
	magic, err := readFixedBytes(r, 8)
	if err != nil {
		return nil, err
	}
	if string(magic) != demo.MagicDemoType {
		return nil, demo.ErrInvalidDemoType
	}

	h := &demo.Header{DemoType: string(magic)}

	version, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	h.Version = int32(version)

	protocol, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	h.Protocol = int32(protocol)

	if h.Server, h.RawServer, err = readFixedDisplayString(r); err != nil {
		return nil, err
	}
	if h.Nick, h.RawNick, err = readFixedDisplayString(r); err != nil {
		return nil, err
	}
	if h.Map, h.RawMap, err = readFixedDisplayString(r); err != nil {
		return nil, err
	}
	if h.Game, h.RawGame, err = readFixedDisplayString(r); err != nil {
		return nil, err
	}

	duration, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}
	h.Duration = duration

	ticks, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	h.Ticks = int32(ticks)

	frames, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	h.Frames = int32(frames)

	signon, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	h.SignonLength = int32(signon)

	return h, nil
}

func readFixedBytes(r *bitstream.Reader, n int) ([]byte, error) {
	buf, err := r.ReadBits(uint64(n) * 8)
	if err != nil {
		return nil, demo.ErrUnexpectedEnd
	}
	return buf, nil
}

// readFixedDisplayString reads a fixed-width (fixedStringFieldLen-byte)
// NUL-trimmed field and decodes it per demo.DecodeDisplayString's
// UTF-8/EUC-KR fallback (grounded on icza-screp's cString/koreanString).
func readFixedDisplayString(r *bitstream.Reader) (decoded, raw string, err error) {
	buf, err := readFixedBytes(r, fixedStringFieldLen)
	if err != nil {
		return "", "", err
	}
	decoded, raw = demo.DecodeDisplayString(demo.TrimNUL(buf))
	return decoded, raw, nil
}
