// This file contains the closed taxonomy of parse errors (spec.md §7).
// Each kind is its own exported type so callers can carry structured
// context (an offending byte, id, or name) instead of matching on strings.

package demo

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEnd indicates the bit stream was exhausted mid-read.
var ErrUnexpectedEnd = errors.New("demo: unexpected end of stream")

// ErrInvalidDemoType indicates the header magic didn't match "HL2DEMO\x00".
var ErrInvalidDemoType = errors.New("demo: invalid demo type")

// ErrDecompressionFailed indicates an LZSS-compressed block violated the
// format's invariants.
var ErrDecompressionFailed = errors.New("demo: decompression failed")

// InvalidPacketTypeError indicates an unrecognized top-level packet command
// byte.
type InvalidPacketTypeError struct {
	Cmd byte
}

func (e *InvalidPacketTypeError) Error() string {
	return fmt.Sprintf("demo: invalid packet type %#x", e.Cmd)
}

// UnknownMessageTypeError indicates a message type id outside the known
// range, or a known-range id with no registered decoder.
type UnknownMessageTypeError struct {
	Type byte
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("demo: unknown message type %d", e.Type)
}

// InvalidProtocolError indicates a demo protocol version this parser
// doesn't support (spec.md §9 open question: reject instead of guessing).
type InvalidProtocolError struct {
	Protocol int32
}

func (e *InvalidProtocolError) Error() string {
	return fmt.Sprintf("demo: unsupported protocol version %d", e.Protocol)
}

// MalformedSendTableError indicates a send-table reference to an unknown
// table, an unknown property type, or a flag combination the schema rules
// forbid.
type MalformedSendTableError struct {
	Reason string
}

func (e *MalformedSendTableError) Error() string {
	return "demo: malformed send table: " + e.Reason
}

// ClassNotFoundError indicates an entity referenced a server class id with
// no corresponding flattened schema.
type ClassNotFoundError struct {
	ClassID uint16
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("demo: class not found: %d", e.ClassID)
}

// StringTableNotFoundError indicates an update referenced a string table
// that no StringTables packet or CreateStringTable message had registered.
// UpdateStringTable refers to tables by index, so Name then holds a
// placeholder rather than a table name.
type StringTableNotFoundError struct {
	Name string
}

func (e *StringTableNotFoundError) Error() string {
	return fmt.Sprintf("demo: string table not found: %q", e.Name)
}

// InvalidGameEventError indicates a game event whose descriptor declares an
// entry type outside the known set (1..7). An event id absent from the
// descriptor list is not an error: it decodes as an opaque event.
type InvalidGameEventError struct {
	ID int
}

func (e *InvalidGameEventError) Error() string {
	return fmt.Sprintf("demo: invalid game event id %d", e.ID)
}

// ReadError is a generic fallback for conditions not covered by a more
// specific kind above.
type ReadError struct {
	Msg string
}

func (e *ReadError) Error() string {
	return "demo: " + e.Msg
}
