// This file contains the top-level Packet command byte taxonomy (spec.md
// §4.E).

package demo

// Packet command bytes.
const (
	PacketCmdSignon       byte = 1
	PacketCmdMessage      byte = 2
	PacketCmdSyncTick     byte = 3
	PacketCmdConsoleCmd   byte = 4
	PacketCmdUserCmd      byte = 5
	PacketCmdDataTables   byte = 6
	PacketCmdStop         byte = 7
	PacketCmdStringTables byte = 8
	PacketCmdCustomData   byte = 9
)

// PacketKind describes a decoded packet's kind.
type PacketKind struct {
	Enum
	Cmd byte
}

var packetKinds = []*PacketKind{
	{Enum{"Signon"}, PacketCmdSignon},
	{Enum{"Message"}, PacketCmdMessage},
	{Enum{"SyncTick"}, PacketCmdSyncTick},
	{Enum{"ConsoleCmd"}, PacketCmdConsoleCmd},
	{Enum{"UserCmd"}, PacketCmdUserCmd},
	{Enum{"DataTables"}, PacketCmdDataTables},
	{Enum{"Stop"}, PacketCmdStop},
	{Enum{"StringTables"}, PacketCmdStringTables},
	{Enum{"CustomData"}, PacketCmdCustomData},
}

var packetKindsByCmd = func() map[byte]*PacketKind {
	m := make(map[byte]*PacketKind, len(packetKinds))
	for _, pk := range packetKinds {
		m[pk.Cmd] = pk
	}
	return m
}()

// PacketKindByCmd returns the PacketKind for cmd, or nil if cmd is
// unrecognized (the caller must treat that as InvalidPacketTypeError).
func PacketKindByCmd(cmd byte) *PacketKind {
	return packetKindsByCmd[cmd]
}
