// This file implements the game-event engine (spec.md §4.J): the
// GameEventList descriptor table and per-instance GameEvent decode.

package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

func decodeGameEventList(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState) (demo.Message, error) {
	countU, err := r.ReadUint(9)
	if err != nil {
		return nil, err
	}
	descriptors := make([]*demo.GameEventDescriptor, 0, countU)
	for i := uint64(0); i < countU; i++ {
		idU, err := r.ReadUint(9)
		if err != nil {
			return nil, err
		}
		name, err := r.ReadString(0)
		if err != nil {
			return nil, err
		}
		entryCountU, err := r.ReadUint(8)
		if err != nil {
			return nil, err
		}
		entries := make([]demo.GameEventEntryDescriptor, 0, entryCountU)
		for j := uint64(0); j < entryCountU; j++ {
			typeU, err := r.ReadUint(3)
			if err != nil {
				return nil, err
			}
			entryName, err := r.ReadString(0)
			if err != nil {
				return nil, err
			}
			entries = append(entries, demo.GameEventEntryDescriptor{Type: demo.GameEventEntryType(typeU), Name: entryName})
		}
		desc := &demo.GameEventDescriptor{ID: int(idU), Name: name, Entries: entries}
		state.RegisterGameEventDescriptor(desc)
		descriptors = append(descriptors, desc)
	}
	return &demo.GameEventListMessage{MessageBase: demo.MessageBase{MessageType: mt}, Descriptors: descriptors}, nil
}

func decodeGameEvent(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState) (demo.Message, error) {
	lengthU, err := r.ReadUint(11)
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBits(lengthU)
	if err != nil {
		return nil, err
	}

	pr := bitstream.NewReader(payload)
	eventIDU, err := pr.ReadUint(9)
	if err != nil {
		return nil, err
	}
	eventID := int(eventIDU)

	ev := &demo.GameEvent{EventID: eventID}
	desc := state.GameEventDescriptorByID(eventID)
	if desc == nil {
		ev.RawBits = lengthU
		ev.RawData = payload
		return &demo.GameEventMessage{MessageBase: demo.MessageBase{MessageType: mt}, Event: ev}, nil
	}

	ev.Name = desc.Name
	ev.Values = make([]demo.GameEventValue, 0, len(desc.Entries))
	for _, ed := range desc.Entries {
		v := demo.GameEventValue{Type: ed.Type, Name: ed.Name}
		switch ed.Type {
		case demo.GameEventEntryString:
			v.Str, err = pr.ReadString(0)
		case demo.GameEventEntryFloat:
			v.Float, err = pr.ReadFloat32()
		case demo.GameEventEntryInt32:
			var n int64
			n, err = pr.ReadInt(32)
			v.Int32 = int32(n)
		case demo.GameEventEntryInt16:
			var n int64
			n, err = pr.ReadInt(16)
			v.Int16 = int16(n)
		case demo.GameEventEntryInt8:
			var n int64
			n, err = pr.ReadInt(8)
			v.Int8 = int8(n)
		case demo.GameEventEntryBool:
			v.Bool, err = pr.ReadBool()
		case demo.GameEventEntryUint16:
			var n uint64
			n, err = pr.ReadUint(16)
			v.Uint16 = uint16(n)
		default:
			return nil, &demo.InvalidGameEventError{ID: eventID}
		}
		if err != nil {
			return nil, err
		}
		ev.Values = append(ev.Values, v)
	}

	return &demo.GameEventMessage{MessageBase: demo.MessageBase{MessageType: mt}, Event: ev}, nil
}
