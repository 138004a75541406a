// This file implements the packet framer (spec.md §4.E): reads a tagged
// packet from the raw stream and dispatches on its command byte, owning
// raw-stream iteration the way icza-screp/repparser/repparser.go's parse()
// owns iteration over Sections.

package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

// decodePacket reads and decodes one packet. done is true once a Stop
// packet has been consumed, at which point the driver loop must stop
// regardless of trailing bytes (spec.md §4.E).
func decodePacket(r *bitstream.Reader, state *demo.ParserState, filter func(byte) bool) (pkt demo.Packet, done bool, err error) {
	cmdU, err := r.ReadUint(8)
	if err != nil {
		return nil, false, err
	}
	cmd := byte(cmdU)

	tickU, err := r.ReadInt(32)
	if err != nil {
		return nil, false, err
	}
	tick := demo.Tick(tickU)
	base := demo.PacketBase{Tick: tick}

	switch cmd {
	case demo.PacketCmdSignon, demo.PacketCmdMessage:
		length, err := r.ReadUint(32)
		if err != nil {
			return nil, false, err
		}
		sub, err := r.SubStream(length * 8)
		if err != nil {
			return nil, false, err
		}
		messages, err := decodeMessages(sub, state, filter)
		if err != nil {
			return nil, false, err
		}
		if cmd == demo.PacketCmdSignon {
			return &demo.SignonPacket{PacketBase: base, Messages: messages}, false, nil
		}
		return &demo.MessagePacket{PacketBase: base, Messages: messages}, false, nil

	case demo.PacketCmdSyncTick:
		return &demo.SyncTickPacket{PacketBase: base}, false, nil

	case demo.PacketCmdConsoleCmd:
		s, err := r.ReadLengthPrefixedString()
		if err != nil {
			return nil, false, err
		}
		return &demo.ConsoleCmdPacket{PacketBase: base, Command: s}, false, nil

	case demo.PacketCmdUserCmd:
		seq, err := r.ReadInt(32)
		if err != nil {
			return nil, false, err
		}
		length, err := r.ReadUint(32)
		if err != nil {
			return nil, false, err
		}
		data, err := r.ReadBits(length * 8)
		if err != nil {
			return nil, false, err
		}
		return &demo.UserCmdPacket{PacketBase: base, Sequence: int32(seq), Data: data}, false, nil

	case demo.PacketCmdDataTables:
		length, err := r.ReadUint(32)
		if err != nil {
			return nil, false, err
		}
		sub, err := r.SubStream(length * 8)
		if err != nil {
			return nil, false, err
		}
		sendTables, classes, err := decodeDataTables(sub, state)
		if err != nil {
			return nil, false, err
		}
		return &demo.DataTablesPacket{PacketBase: base, SendTables: sendTables, ServerClasses: classes}, false, nil

	case demo.PacketCmdStop:
		return &demo.StopPacket{PacketBase: base}, true, nil

	case demo.PacketCmdStringTables:
		length, err := r.ReadUint(32)
		if err != nil {
			return nil, false, err
		}
		sub, err := r.SubStream(length * 8)
		if err != nil {
			return nil, false, err
		}
		tables, err := decodeInitialStringTables(sub, state)
		if err != nil {
			return nil, false, err
		}
		return &demo.StringTablesPacket{PacketBase: base, Tables: tables}, false, nil

	case demo.PacketCmdCustomData:
		length, err := r.ReadUint(32)
		if err != nil {
			return nil, false, err
		}
		data, err := r.ReadBits(length * 8)
		if err != nil {
			return nil, false, err
		}
		return &demo.CustomDataPacket{PacketBase: base, Data: data}, false, nil

	default:
		return nil, false, &demo.InvalidPacketTypeError{Cmd: cmd}
	}
}
