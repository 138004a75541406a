// This file contains the MessageType tagged enum (spec.md §3 Message), the
// numeric message kinds found inside Signon/Message packets (spec.md §4.F).

package demo

// Message type ids, as they appear on the wire (6-bit field, spec.md §4.F).
const (
	MessageIDNop                byte = 0
	MessageIDFile                    = 2
	MessageIDNetTick                 = 3
	MessageIDStringCmd               = 4
	MessageIDSetConVar               = 5
	MessageIDSigOnState              = 6
	MessageIDPrint                   = 7
	MessageIDServerInfo              = 8
	MessageIDClassInfo               = 10
	MessageIDCreateStringTable        = 12
	MessageIDUpdateStringTable        = 13
	MessageIDVoiceInit                = 14
	MessageIDVoiceData                = 15
	MessageIDSounds                   = 17
	MessageIDSetView                  = 18
	MessageIDFixAngle                 = 19
	MessageIDBspDecal                 = 21
	MessageIDUserMessage              = 23
	MessageIDEntityMessage            = 24
	MessageIDGameEvent                = 25
	MessageIDPacketEntities            = 26
	MessageIDTempEntities              = 27
	MessageIDPrefetch                  = 28
	MessageIDMenu                      = 29
	MessageIDGameEventList              = 30
	MessageIDGetCvarValue               = 31
	MessageIDCmdKeyValues                = 32
)

// MessageType describes a decoded message's kind.
type MessageType struct {
	Enum
	ID byte
}

// messageTypes is the table of known message types, indexed for lookup by
// MessageTypeByID.
var messageTypes = []*MessageType{
	{Enum{"Nop"}, MessageIDNop},
	{Enum{"File"}, MessageIDFile},
	{Enum{"NetTick"}, MessageIDNetTick},
	{Enum{"StringCmd"}, MessageIDStringCmd},
	{Enum{"SetConVar"}, MessageIDSetConVar},
	{Enum{"SigOnState"}, MessageIDSigOnState},
	{Enum{"Print"}, MessageIDPrint},
	{Enum{"ServerInfo"}, MessageIDServerInfo},
	{Enum{"ClassInfo"}, MessageIDClassInfo},
	{Enum{"CreateStringTable"}, MessageIDCreateStringTable},
	{Enum{"UpdateStringTable"}, MessageIDUpdateStringTable},
	{Enum{"VoiceInit"}, MessageIDVoiceInit},
	{Enum{"VoiceData"}, MessageIDVoiceData},
	{Enum{"Sounds"}, MessageIDSounds},
	{Enum{"SetView"}, MessageIDSetView},
	{Enum{"FixAngle"}, MessageIDFixAngle},
	{Enum{"BspDecal"}, MessageIDBspDecal},
	{Enum{"UserMessage"}, MessageIDUserMessage},
	{Enum{"EntityMessage"}, MessageIDEntityMessage},
	{Enum{"GameEvent"}, MessageIDGameEvent},
	{Enum{"PacketEntities"}, MessageIDPacketEntities},
	{Enum{"TempEntities"}, MessageIDTempEntities},
	{Enum{"Prefetch"}, MessageIDPrefetch},
	{Enum{"Menu"}, MessageIDMenu},
	{Enum{"GameEventList"}, MessageIDGameEventList},
	{Enum{"GetCvarValue"}, MessageIDGetCvarValue},
	{Enum{"CmdKeyValues"}, MessageIDCmdKeyValues},
}

var messageTypesByID = func() map[byte]*MessageType {
	m := make(map[byte]*MessageType, len(messageTypes))
	for _, mt := range messageTypes {
		m[mt.ID] = mt
	}
	return m
}()

// MessageTypeByID returns the MessageType for id, or an Unknown-named one
// preserving id if it isn't recognized.
func MessageTypeByID(id byte) *MessageType {
	if mt, ok := messageTypesByID[id]; ok {
		return mt
	}
	return &MessageType{Enum: UnknownEnum(id), ID: id}
}

// IsKnownMessageType reports whether id is one of the message kinds Source
// demos actually define (spec.md §4.F), regardless of whether this parser
// gives it further semantics beyond opaque framing. A false id is a wire
// corruption or a format this parser has never seen, not a message kind it
// chooses not to interpret.
func IsKnownMessageType(id byte) bool {
	_, ok := messageTypesByID[id]
	return ok
}
