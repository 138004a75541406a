// This file contains the Message tagged variant (spec.md §3 Message) and
// the concrete message payload types the parser actively interprets.
// Message kinds the spec treats as inert from the parser's point of view
// (Sounds, SetView, FixAngle, BspDecal, UserMessage, EntityMessage,
// TempEntities, Prefetch, Menu, GetCvarValue, CmdKeyValues, VoiceInit,
// VoiceData, Print, StringCmd, SetConVar, SigOnState, NetTick, File) are
// represented uniformly by OpaqueMessage, carrying their undecoded bits
// (when their type passed the parse filter) so re-encoding is exact; this
// mirrors the teacher's own treatment of
// commands it can't interpret (repcmd.ParseErrCmd) but here it is the
// designed behavior, not an error path.

package demo

// Message is the interface every concrete message type implements.
type Message interface {
	// Type returns the message's tagged kind.
	Type() *MessageType
}

// MessageBase is embedded by every concrete Message type.
type MessageBase struct {
	MessageType *MessageType
}

// Type implements Message.
func (m *MessageBase) Type() *MessageType { return m.MessageType }

// OpaqueMessage preserves a message this parser doesn't interpret further,
// as a raw bit count and payload, so it can be re-emitted unchanged. When
// the message's type was filtered out during decoding, its bits are skipped
// and Data is nil; only BitLength is kept.
type OpaqueMessage struct {
	MessageBase
	BitLength uint64
	Data      []byte
}

// ServerInfoMessage carries the game's protocol/class-count/tick-interval
// negotiation sent once near the start of a demo.
type ServerInfoMessage struct {
	MessageBase
	Protocol       int32
	ServerCount    int32
	IsDedicated    bool
	MaxClients     int32
	MaxClasses     int16
	MapName        string
	GameDir        string
	TickInterval   float32
}

// ClassInfoMessage carries a static table of server class id -> name
// (distinct from the per-demo DataTables flattening; used for demos that
// skip sending full send tables when classes are a known, fixed set).
type ClassInfoMessage struct {
	MessageBase
	Classes []ClassInfoEntry
}

// ClassInfoEntry is one row of a ClassInfoMessage.
type ClassInfoEntry struct {
	ClassID       int16
	ClassName     string
	DataTableName string
}

// CreateStringTableMessage carries the initial snapshot of one string
// table (spec.md §4.I).
type CreateStringTableMessage struct {
	MessageBase
	TableName            string
	MaxEntries            int
	UserDataFixedSize     bool
	UserDataSize          int
	UserDataSizeBits      int
	Compressed            bool
	Entries               []*StringTableEntry
}

// UpdateStringTableMessage carries incremental updates to an existing
// string table (spec.md §4.I).
type UpdateStringTableMessage struct {
	MessageBase
	TableID      int
	ChangedCount int
	Entries      []*StringTableEntry
}

// PacketEntitiesMessage carries a tick's worth of entity creation /
// deletion / property delta data (spec.md §4.H).
type PacketEntitiesMessage struct {
	MessageBase
	MaxEntries      int
	IsDelta         bool
	DeltaFrom       int32
	BaseLine        int
	UpdatedEntries  int
	UpdateBaseline  bool
	Updates         []*EntityUpdate
}

// EntityUpdateKind tags the per-entity update variants inside a
// PacketEntitiesMessage.
type EntityUpdateKind byte

const (
	EntityUpdatePreserve EntityUpdateKind = iota
	EntityUpdateEnterPVS
	EntityUpdateLeavePVS
	EntityUpdateDelete
)

// EntityUpdate is one entity's update within a PacketEntitiesMessage.
type EntityUpdate struct {
	EntityIndex int
	Kind        EntityUpdateKind
	Serial      int
	ClassID     uint16
	Props       []EntityPropUpdate
}

// EntityPropUpdate is a single decoded property slot inside an
// EntityUpdate.
type EntityPropUpdate struct {
	PropIndex int
	Value     PropValue
}

// GameEventListMessage carries the descriptor table every GameEventMessage
// is decoded against (spec.md §4.J).
type GameEventListMessage struct {
	MessageBase
	Descriptors []*GameEventDescriptor
}

// GameEventMessage carries one decoded (or, if unknown, opaque) game event
// instance (spec.md §4.J).
type GameEventMessage struct {
	MessageBase
	Event *GameEvent
}
