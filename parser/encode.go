/*

This file implements re-encoding (spec.md §6 "Re-encoding", §8
"Round-trip / idempotence", SPEC_FULL.md §6 "4.N Re-encoding"
supplement): turning a decoded Header plus a packet stream back into
demo bytes such that re-parsing them reproduces semantically equal
values (decode(encode(m)) == m), mirroring decode step for step.

Grounded on original_source/src/bin/reencode.rs and
original_source/tests/message_reencode.rs, which keep a dedicated
encode path and a per-message round-trip test rather than treating
re-encoding as an afterthought.

String-table entries are always re-encoded as full strings (the
substring-compression path is a size optimisation the decoder already
handles reading one way; the writer always takes the "not substring"
branch), and CreateStringTable/StringTables snapshots are always
re-encoded uncompressed (Compressed is forced to false): both are
documented simplifications that still round-trip to equal decoded tables
and entries, just never through the compressed/substring wire shapes. A
re-decoded CreateStringTableMessage therefore reports Compressed as false.

*/
package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

// Reencode serializes a header and its packet stream back into demo bytes.
func Reencode(h *demo.Header, packets []demo.Packet, state *demo.ParserState) ([]byte, error) {
	w := bitstream.NewWriter()
	if err := encodeHeader(w, h); err != nil {
		return nil, err
	}
	for _, pkt := range packets {
		if err := encodePacket(w, pkt, state); err != nil {
			return nil, err
		}
	}
	w.ByteAlign()
	return w.Bytes(), nil
}

func encodeHeader(w *bitstream.Writer, h *demo.Header) error {
	writeFixedBytes(w, []byte(demo.MagicDemoType), 8)
	w.WriteInt(int64(h.Version), 32)
	w.WriteInt(int64(h.Protocol), 32)
	writeFixedDisplayString(w, h.RawServer)
	writeFixedDisplayString(w, h.RawNick)
	writeFixedDisplayString(w, h.RawMap)
	writeFixedDisplayString(w, h.RawGame)
	w.WriteFloat32(h.Duration)
	w.WriteInt(int64(h.Ticks), 32)
	w.WriteInt(int64(h.Frames), 32)
	w.WriteInt(int64(h.SignonLength), 32)
	return nil
}

func writeFixedBytes(w *bitstream.Writer, data []byte, n int) {
	for i := 0; i < n; i++ {
		if i < len(data) {
			w.WriteUint(uint64(data[i]), 8)
		} else {
			w.WriteUint(0, 8)
		}
	}
}

// writeFixedDisplayString writes raw (the field's undecoded bytes, spec.md
// §4 header string fallback) NUL-padded to fixedStringFieldLen bytes.
func writeFixedDisplayString(w *bitstream.Writer, raw string) {
	writeFixedBytes(w, []byte(raw), fixedStringFieldLen)
}

func encodePacket(w *bitstream.Writer, pkt demo.Packet, state *demo.ParserState) error {
	w.WriteUint(uint64(pkt.Kind().Cmd), 8)
	w.WriteInt(int64(pkt.Base().Tick), 32)

	switch p := pkt.(type) {
	case *demo.SignonPacket:
		return encodeFramedMessages(w, p.Messages, state)
	case *demo.MessagePacket:
		return encodeFramedMessages(w, p.Messages, state)
	case *demo.SyncTickPacket:
		return nil
	case *demo.ConsoleCmdPacket:
		w.WriteLengthPrefixedString(p.Command)
		return nil
	case *demo.UserCmdPacket:
		w.WriteInt(int64(p.Sequence), 32)
		w.WriteUint(uint64(len(p.Data)), 32)
		w.WriteBits(p.Data, uint64(len(p.Data))*8)
		return nil
	case *demo.DataTablesPacket:
		return encodeFramed(w, func(sw *bitstream.Writer) error {
			return encodeDataTables(sw, p.SendTables, p.ServerClasses)
		})
	case *demo.StopPacket:
		return nil
	case *demo.StringTablesPacket:
		return encodeFramed(w, func(sw *bitstream.Writer) error {
			return encodeInitialStringTables(sw, p.Tables)
		})
	case *demo.CustomDataPacket:
		w.WriteUint(uint64(len(p.Data)), 32)
		w.WriteBits(p.Data, uint64(len(p.Data))*8)
		return nil
	default:
		return &demo.ReadError{Msg: "encode: unknown packet type"}
	}
}

// encodeFramed writes body's output behind a 32-bit byte-length prefix, the
// write-side mirror of decodePacket's `length, err := r.ReadUint(32); sub,
// err := r.SubStream(length * 8)` pattern.
func encodeFramed(w *bitstream.Writer, body func(*bitstream.Writer) error) error {
	sw := bitstream.NewWriter()
	if err := body(sw); err != nil {
		return err
	}
	sw.ByteAlign()
	data := sw.Bytes()
	w.WriteUint(uint64(len(data)), 32)
	w.WriteBits(data, uint64(len(data))*8)
	return nil
}

func encodeFramedMessages(w *bitstream.Writer, messages []demo.Message, state *demo.ParserState) error {
	return encodeFramed(w, func(sw *bitstream.Writer) error {
		for _, m := range messages {
			if err := encodeMessage(sw, m, state); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeMessage(w *bitstream.Writer, m demo.Message, state *demo.ParserState) error {
	w.WriteUint(uint64(m.Type().ID), 6)

	switch msg := m.(type) {
	case *demo.OpaqueMessage:
		w.WriteUBitInt(uint32(msg.BitLength))
		w.WriteBits(msg.Data, msg.BitLength)
		return nil
	case *demo.ServerInfoMessage:
		return encodeServerInfo(w, msg)
	case *demo.ClassInfoMessage:
		return encodeClassInfo(w, msg)
	case *demo.CreateStringTableMessage:
		return encodeCreateStringTable(w, msg)
	case *demo.UpdateStringTableMessage:
		return encodeUpdateStringTable(w, msg, state)
	case *demo.PacketEntitiesMessage:
		return encodePacketEntitiesMessage(w, msg, state)
	case *demo.GameEventListMessage:
		return encodeGameEventList(w, msg)
	case *demo.GameEventMessage:
		return encodeGameEvent(w, msg)
	default:
		return &demo.ReadError{Msg: "encode: unknown message type"}
	}
}

func encodeServerInfo(w *bitstream.Writer, msg *demo.ServerInfoMessage) error {
	w.WriteInt(int64(msg.Protocol), 32)
	w.WriteInt(int64(msg.ServerCount), 32)
	w.WriteBool(msg.IsDedicated)
	w.WriteInt(int64(msg.MaxClients), 32)
	w.WriteInt(int64(msg.MaxClasses), 16)
	w.WriteString(msg.MapName)
	w.WriteString(msg.GameDir)
	w.WriteFloat32(msg.TickInterval)
	return nil
}

func encodeClassInfo(w *bitstream.Writer, msg *demo.ClassInfoMessage) error {
	w.WriteUint(uint64(len(msg.Classes)), 16)
	for _, c := range msg.Classes {
		w.WriteInt(int64(c.ClassID), 16)
		w.WriteString(c.ClassName)
		w.WriteString(c.DataTableName)
	}
	return nil
}

func encodeDataTables(w *bitstream.Writer, tables []*demo.SendTable, classes []*demo.ServerClass) error {
	for _, t := range tables {
		w.WriteBool(true)
		encodeSendTable(w, t)
	}
	w.WriteBool(false)

	w.WriteUint(uint64(len(classes)), 16)
	for _, c := range classes {
		w.WriteUint(uint64(c.ID), 16)
		w.WriteString(c.Name)
		w.WriteString(c.DataTableName)
	}
	return nil
}

func encodeSendTable(w *bitstream.Writer, t *demo.SendTable) {
	w.WriteBool(t.NeedsDecoder)
	w.WriteString(t.Name)
	w.WriteUBitInt(uint32(len(t.Properties)))
	for _, p := range t.Properties {
		encodeSendProp(w, p)
	}
}

func encodeSendProp(w *bitstream.Writer, def *demo.SendPropDefinition) {
	w.WriteUint(uint64(def.Type.ID), 5)
	w.WriteString(def.Name)
	w.WriteUint(uint64(def.Flags), 16)
	w.WriteUint(uint64(def.Priority), 8)

	switch def.Type.ID {
	case demo.PropTypeIDDataTable:
		w.WriteString(def.TableReference)
	case demo.PropTypeIDArray:
		w.WriteUint(uint64(def.ElementCount), 10)
		w.WriteString(def.InnerPropName)
	case demo.PropTypeIDString:
		// no additional trailer
	default: // Int, Float, Vector, VectorXY, Int64
		w.WriteFloat32(def.LowValue)
		w.WriteFloat32(def.HighValue)
		w.WriteUint(uint64(def.BitCount), 7)
	}
}

func encodeInitialStringTables(w *bitstream.Writer, tables []*demo.StringTable) error {
	w.WriteUint(uint64(len(tables)), 8)
	for _, t := range tables {
		encodeStringTableBody(w, t)
	}
	return nil
}

// encodeStringTableBody writes a CreateStringTable-shaped body for t,
// always uncompressed (see file doc comment).
func encodeStringTableBody(w *bitstream.Writer, t *demo.StringTable) {
	w.WriteString(t.Name)
	w.WriteUint(uint64(t.MaxEntries), 16)
	w.WriteUint(uint64(len(t.Entries)), 16)
	w.WriteBool(t.UserDataFixedSize)
	if t.UserDataFixedSize {
		w.WriteUint(0, 12) // userDataSize byte count isn't retained on StringTable; fixed-size tables carry it per-entry via FixedUserDataSizeBits
		w.WriteUint(uint64(t.FixedUserDataSizeBits), 4)
	}
	w.WriteBool(false) // compressed

	sw := bitstream.NewWriter()
	encodeStringTableEntries(sw, t.Entries, t.UserDataFixedSize, t.FixedUserDataSizeBits)
	w.WriteUint(sw.Len(), 20)
	w.WriteBits(sw.Bytes(), sw.Len())
}

func encodeCreateStringTable(w *bitstream.Writer, msg *demo.CreateStringTableMessage) error {
	w.WriteString(msg.TableName)
	w.WriteUint(uint64(msg.MaxEntries), 16)
	w.WriteUint(uint64(len(msg.Entries)), 16)
	w.WriteBool(msg.UserDataFixedSize)
	if msg.UserDataFixedSize {
		w.WriteUint(uint64(msg.UserDataSize), 12)
		w.WriteUint(uint64(msg.UserDataSizeBits), 4)
	}
	w.WriteBool(false) // compressed

	sw := bitstream.NewWriter()
	encodeStringTableEntries(sw, msg.Entries, msg.UserDataFixedSize, msg.UserDataSizeBits)
	w.WriteUint(sw.Len(), 20)
	w.WriteBits(sw.Bytes(), sw.Len())
	return nil
}

func encodeUpdateStringTable(w *bitstream.Writer, msg *demo.UpdateStringTableMessage, state *demo.ParserState) error {
	w.WriteUint(uint64(msg.TableID), 5)

	if msg.ChangedCount != 1 {
		w.WriteBool(true)
		w.WriteUint(uint64(msg.ChangedCount), 16)
	} else {
		w.WriteBool(false)
	}

	fixedSize, fixedBits := false, 0
	if msg.TableID >= 0 && msg.TableID < len(state.StringTables) {
		t := state.StringTables[msg.TableID]
		fixedSize, fixedBits = t.UserDataFixedSize, t.FixedUserDataSizeBits
	}

	sw := bitstream.NewWriter()
	encodeStringTableEntries(sw, msg.Entries, fixedSize, fixedBits)
	w.WriteUint(sw.Len(), 20)
	w.WriteBits(sw.Bytes(), sw.Len())
	return nil
}

// encodeStringTableEntries writes count entries always as full (never
// substring-compressed) strings; see file doc comment.
func encodeStringTableEntries(w *bitstream.Writer, entries []*demo.StringTableEntry, userDataFixedSize bool, fixedBits int) error {
	cursor := -1
	for _, e := range entries {
		delta := e.Index - cursor - 1
		if delta == 0 {
			w.WriteBool(false)
		} else {
			w.WriteBool(true)
			if delta < 0 || delta >= 1<<5 {
				return &demo.ReadError{Msg: "encode: string table index delta out of range"}
			}
			w.WriteUint(uint64(delta), 5)
		}
		cursor = e.Index

		w.WriteBool(e.HasText)
		if e.HasText {
			w.WriteBool(false) // substring
			w.WriteString(e.Text)
		}

		w.WriteBool(e.HasExtra)
		if e.HasExtra {
			if userDataFixedSize {
				w.WriteBits(e.ExtraData, uint64(fixedBits))
			} else {
				w.WriteUint(uint64(len(e.ExtraData)), 14)
				w.WriteBits(e.ExtraData, uint64(len(e.ExtraData))*8)
			}
		}
	}
	return nil
}

func encodePacketEntitiesMessage(w *bitstream.Writer, msg *demo.PacketEntitiesMessage, state *demo.ParserState) error {
	w.WriteUint(uint64(msg.MaxEntries), 11)
	w.WriteBool(msg.IsDelta)
	if msg.IsDelta {
		w.WriteInt(int64(msg.DeltaFrom), 32)
	}
	w.WriteBool(msg.BaseLine == 1)
	w.WriteUint(uint64(msg.UpdatedEntries), 11)

	sw := bitstream.NewWriter()
	if err := encodeEntityUpdates(sw, state, msg.Updates); err != nil {
		return err
	}
	sw.ByteAlign()
	data := sw.Bytes()

	w.WriteUint(sw.Len(), 20)
	w.WriteBool(msg.UpdateBaseline)
	w.WriteBits(data, sw.Len())
	return nil
}

func encodeEntityUpdates(w *bitstream.Writer, state *demo.ParserState, updates []*demo.EntityUpdate) error {
	cursor := -1
	for _, u := range updates {
		w.WriteUBitInt(uint32(u.EntityIndex - cursor - 1))
		cursor = u.EntityIndex

		w.WriteUint(uint64(u.Kind), 2)

		switch u.Kind {
		case demo.EntityUpdatePreserve:
			if err := encodeEntityPropDeltas(w, state, u.ClassID, u.Props); err != nil {
				return err
			}
		case demo.EntityUpdateEnterPVS:
			w.WriteUint(uint64(u.Serial), 10)
			classIDBits := bitsNeeded(len(state.ServerClasses))
			w.WriteUint(uint64(u.ClassID), classIDBits)
			if err := encodeEntityPropDeltas(w, state, u.ClassID, u.Props); err != nil {
				return err
			}
		case demo.EntityUpdateLeavePVS, demo.EntityUpdateDelete:
			// no further payload
		}
	}
	return nil
}

func encodeEntityPropDeltas(w *bitstream.Writer, state *demo.ParserState, classID uint16, props []demo.EntityPropUpdate) error {
	flat := state.FlattenedByClassID(classID)
	if flat == nil {
		return &demo.ClassNotFoundError{ClassID: classID}
	}

	cursor := -1
	for _, p := range props {
		if p.PropIndex < 0 || p.PropIndex >= len(flat.Properties) {
			return &demo.ReadError{Msg: "encode: entity prop index out of range"}
		}
		w.WriteBool(true)
		w.WriteUBitInt(uint32(p.PropIndex - cursor - 1))
		cursor = p.PropIndex

		def := flat.Properties[p.PropIndex]
		if err := encodePropValue(w, def, p.Value); err != nil {
			return err
		}
	}
	w.WriteBool(false)
	return nil
}

func encodePropValue(w *bitstream.Writer, def *demo.SendPropDefinition, val demo.PropValue) error {
	switch def.Type.ID {
	case demo.PropTypeIDInt:
		return encodeIntProp(w, def, val.Int)
	case demo.PropTypeIDFloat:
		return encodeFloatProp(w, def, val.Float)
	case demo.PropTypeIDVector:
		return encodeVectorProp(w, def, val.Vector)
	case demo.PropTypeIDVectorXY:
		if err := encodeFloatProp(w, def, val.Vector[0]); err != nil {
			return err
		}
		return encodeFloatProp(w, def, val.Vector[1])
	case demo.PropTypeIDString:
		w.WriteUint(uint64(len(val.Str)), 9)
		w.WriteBits([]byte(val.Str), uint64(len(val.Str))*8)
		return nil
	case demo.PropTypeIDArray:
		return encodeArrayProp(w, def, val.Array)
	case demo.PropTypeIDInt64:
		w.WriteInt(val.Int, 64)
		return nil
	default:
		return &demo.MalformedSendTableError{Reason: "unflattened DataTable leaf prop"}
	}
}

func encodeIntProp(w *bitstream.Writer, def *demo.SendPropDefinition, v int64) error {
	switch {
	case def.Flags.Has(demo.PropFlagVarInt):
		w.WriteVarUint32(uint32(v))
	case def.Flags.Has(demo.PropFlagUnsigned):
		w.WriteUint(uint64(v), uint(def.BitCount))
	default:
		w.WriteInt(v, uint(def.BitCount))
	}
	return nil
}

func encodeFloatProp(w *bitstream.Writer, def *demo.SendPropDefinition, v float32) error {
	switch {
	case def.Flags.Has(demo.PropFlagCoord) || def.Flags.Has(demo.PropFlagCoordMP):
		w.WriteBitCoord(v)
	case def.Flags.Has(demo.PropFlagNormal):
		w.WriteBitNormal(v)
	case def.Flags.Has(demo.PropFlagNoScale):
		w.WriteFloat32(v)
	default:
		w.WriteBitFloat(v, uint(def.BitCount), def.LowValue, def.HighValue)
	}
	return nil
}

func encodeVectorProp(w *bitstream.Writer, def *demo.SendPropDefinition, v [3]float32) error {
	if err := encodeFloatProp(w, def, v[0]); err != nil {
		return err
	}
	if err := encodeFloatProp(w, def, v[1]); err != nil {
		return err
	}
	if def.Flags.Has(demo.PropFlagNormal) {
		w.WriteBool(v[2] < 0)
		return nil
	}
	return encodeFloatProp(w, def, v[2])
}

func encodeArrayProp(w *bitstream.Writer, def *demo.SendPropDefinition, elems []demo.PropValue) error {
	countBits := bitsNeeded(def.ElementCount + 1)
	w.WriteUint(uint64(len(elems)), countBits)

	if def.InnerProp == nil {
		return &demo.MalformedSendTableError{Reason: "array prop has no inner element definition: " + def.Name}
	}
	for _, v := range elems {
		if err := encodePropValue(w, def.InnerProp, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeGameEventList(w *bitstream.Writer, msg *demo.GameEventListMessage) error {
	w.WriteUint(uint64(len(msg.Descriptors)), 9)
	for _, d := range msg.Descriptors {
		w.WriteUint(uint64(d.ID), 9)
		w.WriteString(d.Name)
		w.WriteUint(uint64(len(d.Entries)), 8)
		for _, e := range d.Entries {
			w.WriteUint(uint64(e.Type), 3)
			w.WriteString(e.Name)
		}
	}
	return nil
}

func encodeGameEvent(w *bitstream.Writer, msg *demo.GameEventMessage) error {
	ev := msg.Event

	if ev.Values == nil && ev.RawData != nil {
		// Unknown-descriptor event: re-emit the original opaque payload
		// verbatim, eventID included (spec.md: "Unknown ids -> opaque event
		// retaining raw bits").
		w.WriteUint(ev.RawBits, 11)
		w.WriteBits(ev.RawData, ev.RawBits)
		return nil
	}

	sw := bitstream.NewWriter()
	sw.WriteUint(uint64(ev.EventID), 9)
	for _, v := range ev.Values {
		var err error
		switch v.Type {
		case demo.GameEventEntryString:
			sw.WriteString(v.Str)
		case demo.GameEventEntryFloat:
			sw.WriteFloat32(v.Float)
		case demo.GameEventEntryInt32:
			sw.WriteInt(int64(v.Int32), 32)
		case demo.GameEventEntryInt16:
			sw.WriteInt(int64(v.Int16), 16)
		case demo.GameEventEntryInt8:
			sw.WriteInt(int64(v.Int8), 8)
		case demo.GameEventEntryBool:
			sw.WriteBool(v.Bool)
		case demo.GameEventEntryUint16:
			sw.WriteUint(uint64(v.Uint16), 16)
		default:
			err = &demo.InvalidGameEventError{ID: ev.EventID}
		}
		if err != nil {
			return err
		}
	}

	sw.ByteAlign()
	data := sw.Bytes()
	w.WriteUint(sw.Len(), 11)
	w.WriteBits(data, sw.Len())
	return nil
}
