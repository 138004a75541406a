// This file contains the game-event descriptor/instance types (spec.md §3,
// §4.J).

package demo

// GameEventEntryType tags the wire encoding of one game-event field
// (spec.md §4.J).
type GameEventEntryType byte

const (
	GameEventEntryString GameEventEntryType = 1
	GameEventEntryFloat  GameEventEntryType = 2
	GameEventEntryInt32  GameEventEntryType = 3
	GameEventEntryInt16  GameEventEntryType = 4
	GameEventEntryInt8   GameEventEntryType = 5
	GameEventEntryBool   GameEventEntryType = 6
	GameEventEntryUint16 GameEventEntryType = 7
)

// GameEventEntryDescriptor names and types one field of a game event.
type GameEventEntryDescriptor struct {
	Type GameEventEntryType
	Name string
}

// GameEventDescriptor names and types all fields of one kind of game event
// (spec.md §4.J GameEventList).
type GameEventDescriptor struct {
	ID      int
	Name    string
	Entries []GameEventEntryDescriptor
}

// GameEventValue is one decoded field value of a GameEvent.
type GameEventValue struct {
	Type   GameEventEntryType
	Name   string
	Str    string
	Float  float32
	Int32  int32
	Int16  int16
	Int8   int8
	Bool   bool
	Uint16 uint16
}

// GameEvent is a decoded instance of a game event (spec.md §4.J GameEvent).
// If the descriptor for EventID is unknown, Values is empty and RawBits
// carries the opaque payload instead.
type GameEvent struct {
	EventID int
	Name    string
	Values  []GameEventValue

	// RawBits/RawData hold the raw payload when the event id has no known
	// descriptor (spec.md: "Unknown ids -> opaque event retaining raw
	// bits").
	RawBits uint64
	RawData []byte
}
