// This file implements the entity delta decoder (spec.md §4.H): the
// PacketEntities message body, the per-entity header/type dispatch, the
// packed prop-delta loop against a class's flattened schema, and baseline
// snapshot maintenance.

package parser

import (
	"math"

	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

func decodePacketEntitiesMessage(r *bitstream.Reader, mt *demo.MessageType, state *demo.ParserState) (demo.Message, error) {
	maxEntriesU, err := r.ReadUint(11)
	if err != nil {
		return nil, err
	}
	isDelta, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var deltaFrom int32
	if isDelta {
		v, err := r.ReadInt(32)
		if err != nil {
			return nil, err
		}
		deltaFrom = int32(v)
	}
	baseLineBit, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	baseLine := 0
	if baseLineBit {
		baseLine = 1
	}
	updatedEntriesU, err := r.ReadUint(11)
	if err != nil {
		return nil, err
	}
	lengthU, err := r.ReadUint(20)
	if err != nil {
		return nil, err
	}
	updateBaseline, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBits(lengthU)
	if err != nil {
		return nil, err
	}

	dr := bitstream.NewReader(data)
	updates, err := decodeEntityUpdates(dr, state, int(updatedEntriesU), baseLine, updateBaseline)
	if err != nil {
		return nil, err
	}

	return &demo.PacketEntitiesMessage{
		MessageBase:    demo.MessageBase{MessageType: mt},
		MaxEntries:     int(maxEntriesU),
		IsDelta:        isDelta,
		DeltaFrom:      deltaFrom,
		BaseLine:       baseLine,
		UpdatedEntries: int(updatedEntriesU),
		UpdateBaseline: updateBaseline,
		Updates:        updates,
	}, nil
}

// decodeEntityUpdates decodes count entity updates in wire order, applying
// each directly to state.Entities (spec.md §4.H steps 1-3).
func decodeEntityUpdates(dr *bitstream.Reader, state *demo.ParserState, count int, baseLineSlot int, updateBaseline bool) ([]*demo.EntityUpdate, error) {
	altSlot := 1 - baseLineSlot
	updates := make([]*demo.EntityUpdate, 0, count)
	cursor := -1

	for i := 0; i < count; i++ {
		deltaU, err := dr.ReadUBitInt()
		if err != nil {
			return nil, err
		}
		entityIndex := cursor + 1 + int(deltaU)
		cursor = entityIndex

		kindBitsU, err := dr.ReadUint(2)
		if err != nil {
			return nil, err
		}
		kind := demo.EntityUpdateKind(kindBitsU)

		update := &demo.EntityUpdate{EntityIndex: entityIndex, Kind: kind}

		switch kind {
		case demo.EntityUpdatePreserve:
			ent := getOrCreateEntity(state, entityIndex)
			props, err := decodeEntityPropDeltas(dr, state, ent, ent.ClassID)
			if err != nil {
				return nil, err
			}
			ent.InPVS = true
			update.Serial = ent.Serial
			update.ClassID = ent.ClassID
			update.Props = props
			if updateBaseline {
				state.SetBaseline(altSlot, ent.ClassID, ent.Props)
			}

		case demo.EntityUpdateEnterPVS:
			serialU, err := dr.ReadUint(10)
			if err != nil {
				return nil, err
			}
			classIDBits := bitsNeeded(len(state.ServerClasses))
			classIDU, err := dr.ReadUint(classIDBits)
			if err != nil {
				return nil, err
			}
			classID := uint16(classIDU)
			if state.FlattenedByClassID(classID) == nil {
				return nil, &demo.ClassNotFoundError{ClassID: classID}
			}

			props := map[int]demo.PropValue{}
			if baseline := state.Baseline(baseLineSlot, classID); baseline != nil {
				props = baseline.Clone()
			}
			ent := &demo.Entity{Index: entityIndex, Serial: int(serialU), ClassID: classID, InPVS: true, Props: props}
			state.Entities[entityIndex] = ent

			deltas, err := decodeEntityPropDeltas(dr, state, ent, classID)
			if err != nil {
				return nil, err
			}
			update.Serial = ent.Serial
			update.ClassID = classID
			update.Props = deltas
			if updateBaseline {
				state.SetBaseline(altSlot, classID, ent.Props)
			}

		case demo.EntityUpdateLeavePVS:
			if ent := state.Entities[entityIndex]; ent != nil {
				ent.InPVS = false
				update.Serial = ent.Serial
				update.ClassID = ent.ClassID
			}

		case demo.EntityUpdateDelete:
			if ent := state.Entities[entityIndex]; ent != nil {
				update.Serial = ent.Serial
				update.ClassID = ent.ClassID
			}
			delete(state.Entities, entityIndex)
		}

		updates = append(updates, update)
	}

	return updates, nil
}

func getOrCreateEntity(state *demo.ParserState, index int) *demo.Entity {
	if ent := state.Entities[index]; ent != nil {
		return ent
	}
	ent := &demo.Entity{Index: index, Props: map[int]demo.PropValue{}}
	state.Entities[index] = ent
	return ent
}

// decodeEntityPropDeltas reads packed prop-index deltas until the stream
// runs out of further "more properties" flags, decoding each against
// classID's flattened schema (spec.md §4.H step 3).
func decodeEntityPropDeltas(dr *bitstream.Reader, state *demo.ParserState, ent *demo.Entity, classID uint16) ([]demo.EntityPropUpdate, error) {
	flat := state.FlattenedByClassID(classID)
	if flat == nil {
		return nil, &demo.ClassNotFoundError{ClassID: classID}
	}

	var props []demo.EntityPropUpdate
	cursor := -1
	for {
		more, err := dr.ReadBool()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		deltaU, err := dr.ReadUBitInt()
		if err != nil {
			return nil, err
		}
		idx := cursor + 1 + int(deltaU)
		cursor = idx
		if idx < 0 || idx >= len(flat.Properties) {
			return nil, &demo.ReadError{Msg: "entity prop index out of range"}
		}

		def := flat.Properties[idx]
		val, err := decodePropValue(dr, def)
		if err != nil {
			return nil, err
		}
		ent.Props[idx] = val
		props = append(props, demo.EntityPropUpdate{PropIndex: idx, Value: val})
	}
	return props, nil
}

// decodePropValue decodes one property value per its SendPropDefinition's
// type and flags (spec.md §4.H "Per-type decoders").
func decodePropValue(dr *bitstream.Reader, def *demo.SendPropDefinition) (demo.PropValue, error) {
	switch def.Type.ID {
	case demo.PropTypeIDInt:
		return decodeIntProp(dr, def)
	case demo.PropTypeIDFloat:
		f, err := decodeFloatProp(dr, def)
		return demo.PropValue{Kind: demo.PropValueFloat, Float: f}, err
	case demo.PropTypeIDVector:
		return decodeVectorProp(dr, def)
	case demo.PropTypeIDVectorXY:
		x, err := decodeFloatProp(dr, def)
		if err != nil {
			return demo.PropValue{}, err
		}
		y, err := decodeFloatProp(dr, def)
		if err != nil {
			return demo.PropValue{}, err
		}
		return demo.PropValue{Kind: demo.PropValueVectorXY, Vector: [3]float32{x, y, 0}}, nil
	case demo.PropTypeIDString:
		lengthU, err := dr.ReadUint(9)
		if err != nil {
			return demo.PropValue{}, err
		}
		bytes, err := dr.ReadBits(lengthU * 8)
		if err != nil {
			return demo.PropValue{}, err
		}
		return demo.PropValue{Kind: demo.PropValueString, Str: string(bytes)}, nil
	case demo.PropTypeIDArray:
		return decodeArrayProp(dr, def)
	case demo.PropTypeIDInt64:
		n, err := dr.ReadInt(64)
		return demo.PropValue{Kind: demo.PropValueInt64, Int: n}, err
	default:
		return demo.PropValue{}, &demo.MalformedSendTableError{Reason: "unflattened DataTable leaf prop"}
	}
}

func decodeIntProp(dr *bitstream.Reader, def *demo.SendPropDefinition) (demo.PropValue, error) {
	if def.Flags.Has(demo.PropFlagVarInt) {
		v, err := dr.ReadVarUint32()
		return demo.PropValue{Kind: demo.PropValueInt, Int: int64(v)}, err
	}
	if def.Flags.Has(demo.PropFlagUnsigned) {
		v, err := dr.ReadUint(uint(def.BitCount))
		return demo.PropValue{Kind: demo.PropValueInt, Int: int64(v)}, err
	}
	v, err := dr.ReadInt(uint(def.BitCount))
	return demo.PropValue{Kind: demo.PropValueInt, Int: v}, err
}

func decodeFloatProp(dr *bitstream.Reader, def *demo.SendPropDefinition) (float32, error) {
	switch {
	case def.Flags.Has(demo.PropFlagCoord) || def.Flags.Has(demo.PropFlagCoordMP):
		return dr.ReadBitCoord()
	case def.Flags.Has(demo.PropFlagNormal):
		return dr.ReadBitNormal()
	case def.Flags.Has(demo.PropFlagNoScale):
		return dr.ReadFloat32()
	default:
		return dr.ReadBitFloat(uint(def.BitCount), def.LowValue, def.HighValue)
	}
}

func decodeVectorProp(dr *bitstream.Reader, def *demo.SendPropDefinition) (demo.PropValue, error) {
	x, err := decodeFloatProp(dr, def)
	if err != nil {
		return demo.PropValue{}, err
	}
	y, err := decodeFloatProp(dr, def)
	if err != nil {
		return demo.PropValue{}, err
	}

	var z float32
	if def.Flags.Has(demo.PropFlagNormal) {
		// Z is reconstructed from X/Y plus a sign bit (spec.md §4.H: "Vector's
		// Z may be 0 if Normal flag plus sign bit").
		sign, err := dr.ReadBool()
		if err != nil {
			return demo.PropValue{}, err
		}
		underSqrt := 1 - x*x - y*y
		if underSqrt > 0 {
			z = float32(math.Sqrt(float64(underSqrt)))
		}
		if sign {
			z = -z
		}
	} else {
		z, err = decodeFloatProp(dr, def)
		if err != nil {
			return demo.PropValue{}, err
		}
	}

	return demo.PropValue{Kind: demo.PropValueVector, Vector: [3]float32{x, y, z}}, nil
}

func decodeArrayProp(dr *bitstream.Reader, def *demo.SendPropDefinition) (demo.PropValue, error) {
	countBits := bitsNeeded(def.ElementCount + 1)
	countU, err := dr.ReadUint(countBits)
	if err != nil {
		return demo.PropValue{}, err
	}

	// Each element decodes against the InsideArray-flagged template prop
	// that preceded this Array prop in its send table (spec.md §3
	// inner_element_name, §4.G InsideArray semantics), consumed into
	// def.InnerProp during flattening.
	if def.InnerProp == nil {
		return demo.PropValue{}, &demo.MalformedSendTableError{Reason: "array prop has no inner element definition: " + def.Name}
	}

	elems := make([]demo.PropValue, 0, countU)
	for i := uint64(0); i < countU; i++ {
		v, err := decodePropValue(dr, def.InnerProp)
		if err != nil {
			return demo.PropValue{}, err
		}
		elems = append(elems, v)
	}
	return demo.PropValue{Kind: demo.PropValueArray, Array: elems}, nil
}

// bitsNeeded returns ceil(log2(n)), the number of bits needed to address n
// distinct values (0 and 1 both need at least 1 bit).
func bitsNeeded(n int) uint {
	if n <= 1 {
		return 1
	}
	bits := uint(0)
	for (1 << bits) < n {
		bits++
	}
	return bits
}
