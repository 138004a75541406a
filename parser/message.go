// This file implements the message framer (spec.md §4.F): reads a 6-bit
// message type tag and dispatches to the per-type decoder. Message bodies
// this parser doesn't give further semantics to are framed as
// demo.OpaqueMessage via a self-describing bit-length prefix (spec.md §1
// gives these no detailed wire layout; only the stateful kinds — ServerInfo,
// ClassInfo, string tables, entities, and game events — get one here).

package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

// decodeMessages reads messages from r until fewer than a type tag's worth
// of bits remain, driving state mutation for every message regardless of
// filter and skipping the raw payload of unwanted opaque ones (spec.md
// §4.K: "filtering is purely a performance optimisation").
func decodeMessages(r *bitstream.Reader, state *demo.ParserState, filter func(byte) bool) ([]demo.Message, error) {
	var out []demo.Message
	for r.Remaining() >= 6 {
		typeU, err := r.ReadUint(6)
		if err != nil {
			return nil, err
		}
		id := byte(typeU)
		mt := demo.MessageTypeByID(id)
		msg, err := decodeMessageBody(r, mt, state, filter(id))
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func decodeMessageBody(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState, wanted bool) (demo.Message, error) {
	switch mt.ID {
	case demo.MessageIDServerInfo:
		return decodeServerInfo(r, mt)
	case demo.MessageIDClassInfo:
		return decodeClassInfo(r, mt)
	case demo.MessageIDCreateStringTable:
		return decodeCreateStringTable(r, mt, state)
	case demo.MessageIDUpdateStringTable:
		return decodeUpdateStringTable(r, mt, state)
	case demo.MessageIDPacketEntities:
		return decodePacketEntitiesMessage(r, mt, state)
	case demo.MessageIDGameEvent:
		return decodeGameEvent(r, mt, state)
	case demo.MessageIDGameEventList:
		return decodeGameEventList(r, mt, state)
	default:
		if !demo.IsKnownMessageType(mt.ID) {
			return nil, &demo.UnknownMessageTypeError{Type: mt.ID}
		}
		return decodeOpaqueMessage(r, mt, wanted)
	}
}

// decodeOpaqueMessage reads a varint-style bit length followed by that many
// raw bits, or skips them outright when the analyser has no interest in
// this message type.
func decodeOpaqueMessage(r *bitstream.Reader, mt *demo.MessageType, wanted bool) (demo.Message, error) {
	bitLenU, err := r.ReadUBitInt()
	if err != nil {
		return nil, err
	}
	bitLen := uint64(bitLenU)
	msg := &demo.OpaqueMessage{MessageBase: demo.MessageBase{MessageType: mt}, BitLength: bitLen}
	if wanted {
		data, err := r.ReadBits(bitLen)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	} else if err := r.Skip(bitLen); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeServerInfo(r *bitstream.Reader, mt *demo.MessageType) (demo.Message, error) {
	protocol, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	serverCount, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	dedicated, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	maxClients, err := r.ReadInt(32)
	if err != nil {
		return nil, err
	}
	maxClasses, err := r.ReadInt(16)
	if err != nil {
		return nil, err
	}
	mapName, err := r.ReadString(0)
	if err != nil {
		return nil, err
	}
	gameDir, err := r.ReadString(0)
	if err != nil {
		return nil, err
	}
	tickInterval, err := r.ReadFloat32()
	if err != nil {
		return nil, err
	}

	return &demo.ServerInfoMessage{
		MessageBase:  demo.MessageBase{MessageType: mt},
		Protocol:     int32(protocol),
		ServerCount:  int32(serverCount),
		IsDedicated:  dedicated,
		MaxClients:   int32(maxClients),
		MaxClasses:   int16(maxClasses),
		MapName:      mapName,
		GameDir:      gameDir,
		TickInterval: tickInterval,
	}, nil
}

func decodeClassInfo(r *bitstream.Reader, mt *demo.MessageType) (demo.Message, error) {
	countU, err := r.ReadUint(16)
	if err != nil {
		return nil, err
	}
	classes := make([]demo.ClassInfoEntry, 0, countU)
	for i := uint64(0); i < countU; i++ {
		idU, err := r.ReadInt(16)
		if err != nil {
			return nil, err
		}
		name, err := r.ReadString(0)
		if err != nil {
			return nil, err
		}
		dataTableName, err := r.ReadString(0)
		if err != nil {
			return nil, err
		}
		classes = append(classes, demo.ClassInfoEntry{ClassID: int16(idU), ClassName: name, DataTableName: dataTableName})
	}
	return &demo.ClassInfoMessage{MessageBase: demo.MessageBase{MessageType: mt}, Classes: classes}, nil
}

func decodeCreateStringTable(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState) (demo.Message, error) {
	body, err := decodeStringTableBody(r)
	if err != nil {
		return nil, err
	}
	state.RegisterStringTable(body.table)
	return &demo.CreateStringTableMessage{
		MessageBase:       demo.MessageBase{MessageType: mt},
		TableName:         body.table.Name,
		MaxEntries:        body.maxEntries,
		UserDataFixedSize: body.userDataFixedSize,
		UserDataSize:      body.userDataSize,
		UserDataSizeBits:  body.userDataSizeBits,
		Compressed:        body.compressed,
		Entries:           body.entries,
	}, nil
}

func decodeUpdateStringTable(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState) (demo.Message, error) {
	tableIDU, err := r.ReadUint(5)
	if err != nil {
		return nil, err
	}
	tableID := int(tableIDU)

	multiple, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	numChanged := 1
	if multiple {
		v, err := r.ReadUint(16)
		if err != nil {
			return nil, err
		}
		numChanged = int(v)
	}

	lengthU, err := r.ReadUint(20)
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBits(lengthU)
	if err != nil {
		return nil, err
	}

	if tableID < 0 || tableID >= len(state.StringTables) {
		return nil, &demo.StringTableNotFoundError{Name: "<index out of range>"}
	}
	table := state.StringTables[tableID]

	entryReader := bitstream.NewReader(payload)
	entries, err := decodeStringTableEntries(entryReader, table, numChanged)
	if err != nil {
		return nil, err
	}

	return &demo.UpdateStringTableMessage{
		MessageBase:  demo.MessageBase{MessageType: mt},
		TableID:      tableID,
		ChangedCount: numChanged,
		Entries:      entries,
	}, nil
}
