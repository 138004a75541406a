// This file contains the fixed-layout demo header (spec.md §3 Header).

package demo

// MagicDemoType is the fixed 8-byte ASCII magic every well-formed demo file
// starts with.
const MagicDemoType = "HL2DEMO\x00"

// MinSupportedProtocol is the lowest demo protocol version whose packet
// framer layout (spec.md §4.E, tick as a plain i32) this parser supports.
// Per spec.md §9's open question, older protocols are rejected with
// InvalidProtocolError rather than guessed at.
const MinSupportedProtocol = 4

// Header is the fixed-size preamble of a demo file.
type Header struct {
	// DemoType is the raw 8-byte magic, expected to equal MagicDemoType.
	DemoType string

	// Version of the demo protocol the recording engine build used.
	Version int32

	// Protocol is the network protocol version.
	Protocol int32

	// Server is the name of the server that recorded the demo.
	Server string
	// RawServer is Server's undecoded bytes (may differ if Server isn't
	// valid UTF-8).
	RawServer string

	// Nick is the name of the client that recorded the demo.
	Nick string
	RawNick string

	// Map is the name of the map played.
	Map    string
	RawMap string

	// Game is the name of the game directory (e.g. "tf").
	Game    string
	RawGame string

	// Duration of the demo in seconds.
	Duration float32

	// Ticks is the total number of ticks recorded.
	Ticks int32

	// Frames is the total number of frames recorded.
	Frames int32

	// SignonLength is the length in bytes of the sign-on data.
	SignonLength int32
}
