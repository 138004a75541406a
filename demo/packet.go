// This file contains the Packet tagged variant (spec.md §3 Packet) and its
// per-kind payload types. Each concrete packet type embeds Base, exposing
// its tick and kind uniformly, following icza-screp/rep/repcmd/cmd.go's
// Base/BaseCmd()-style embedding (there called repcmd.Base).

package demo

// Packet is the interface every concrete packet type implements.
type Packet interface {
	// Kind returns the packet's tagged kind.
	Kind() *PacketKind
	// Base returns the packet's common fields.
	Base() *PacketBase
}

// PacketBase is embedded by every concrete Packet type.
type PacketBase struct {
	// Tick this packet was recorded at.
	Tick Tick
}

// SignonPacket carries messages recorded during the sign-on phase.
type SignonPacket struct {
	PacketBase
	Messages []Message
}

func (p *SignonPacket) Kind() *PacketKind { return packetKinds[0] }
func (p *SignonPacket) Base() *PacketBase { return &p.PacketBase }

// MessagePacket carries the per-tick stream of network messages.
type MessagePacket struct {
	PacketBase
	Messages []Message
}

func (p *MessagePacket) Kind() *PacketKind { return packetKinds[1] }
func (p *MessagePacket) Base() *PacketBase { return &p.PacketBase }

// SyncTickPacket marks a point where client and server ticks are
// resynchronized; it carries no payload.
type SyncTickPacket struct {
	PacketBase
}

func (p *SyncTickPacket) Kind() *PacketKind { return packetKinds[2] }
func (p *SyncTickPacket) Base() *PacketBase { return &p.PacketBase }

// ConsoleCmdPacket carries a console command string issued by the demo's
// recorder.
type ConsoleCmdPacket struct {
	PacketBase
	Command string
}

func (p *ConsoleCmdPacket) Kind() *PacketKind { return packetKinds[3] }
func (p *ConsoleCmdPacket) Base() *PacketBase { return &p.PacketBase }

// UserCmdPacket carries an opaque user command. Per spec.md §9's open
// question, the payload is preserved verbatim rather than decoded.
type UserCmdPacket struct {
	PacketBase
	Sequence int32
	Data     []byte
}

func (p *UserCmdPacket) Kind() *PacketKind { return packetKinds[4] }
func (p *UserCmdPacket) Base() *PacketBase { return &p.PacketBase }

// DataTablesPacket carries the embedded send-table schema and server class
// list.
type DataTablesPacket struct {
	PacketBase
	SendTables    []*SendTable
	ServerClasses []*ServerClass
}

func (p *DataTablesPacket) Kind() *PacketKind { return packetKinds[5] }
func (p *DataTablesPacket) Base() *PacketBase { return &p.PacketBase }

// StopPacket terminates the packet stream.
type StopPacket struct {
	PacketBase
}

func (p *StopPacket) Kind() *PacketKind { return packetKinds[6] }
func (p *StopPacket) Base() *PacketBase { return &p.PacketBase }

// StringTablesPacket carries the initial snapshot of every string table.
type StringTablesPacket struct {
	PacketBase
	Tables []*StringTable
}

func (p *StringTablesPacket) Kind() *PacketKind { return packetKinds[7] }
func (p *StringTablesPacket) Base() *PacketBase { return &p.PacketBase }

// CustomDataPacket carries an opaque, engine-specific payload (spec.md
// §4.E cmd 9).
type CustomDataPacket struct {
	PacketBase
	Data []byte
}

func (p *CustomDataPacket) Kind() *PacketKind { return packetKinds[8] }
func (p *CustomDataPacket) Base() *PacketBase { return &p.PacketBase }
