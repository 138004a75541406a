// This file implements the send-table / server-class schema engine
// (spec.md §4.G): parsing the DataTables packet payload, then flattening
// each server class's table graph into a deterministic, priority-sorted
// property list. Grounded on icza-screp/rep/computed.go's post-parse
// derivation passes (deriving stable secondary structures from a raw
// parsed tree) and on spec.md §3's flattening algorithm directly.

package parser

import (
	"sort"

	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

// decodeDataTables parses every send table followed by the server-class
// list, then flattens each class's property graph into state.Flattened.
func decodeDataTables(r *bitstream.Reader, state *demo.ParserState) ([]*demo.SendTable, []*demo.ServerClass, error) {
	var tables []*demo.SendTable
	for {
		more, err := r.ReadBool()
		if err != nil {
			return nil, nil, err
		}
		if !more {
			break
		}
		table, err := decodeSendTable(r)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, table)
	}

	classCountU, err := r.ReadUint(16)
	if err != nil {
		return nil, nil, err
	}
	classes := make([]*demo.ServerClass, 0, classCountU)
	for i := uint64(0); i < classCountU; i++ {
		idU, err := r.ReadUint(16)
		if err != nil {
			return nil, nil, err
		}
		name, err := r.ReadString(0)
		if err != nil {
			return nil, nil, err
		}
		dataTableName, err := r.ReadString(0)
		if err != nil {
			return nil, nil, err
		}
		classes = append(classes, &demo.ServerClass{ID: uint16(idU), Name: name, DataTableName: dataTableName})
	}

	// Two-phase resolution (spec.md §9): every table is already collected
	// above before any reference is resolved, so forward/cyclic DataTable
	// references between tables never fail to resolve by ordering alone.
	tablesByName := make(map[string]*demo.SendTable, len(tables))
	for _, t := range tables {
		tablesByName[t.Name] = t
	}

	state.SendTables = tables
	state.SendTableByName = tablesByName
	state.ServerClasses = classes
	state.ServerClassByID = make(map[uint16]*demo.ServerClass, len(classes))
	for _, c := range classes {
		state.ServerClassByID[c.ID] = c
	}

	for _, c := range classes {
		flat, err := flattenClass(c, tablesByName)
		if err != nil {
			return nil, nil, err
		}
		state.Flattened[c.ID] = flat
	}

	return tables, classes, nil
}

func decodeSendTable(r *bitstream.Reader) (*demo.SendTable, error) {
	needsDecoder, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	name, err := r.ReadString(0)
	if err != nil {
		return nil, err
	}
	propCount, err := r.ReadUBitInt()
	if err != nil {
		return nil, err
	}
	props := make([]*demo.SendPropDefinition, 0, propCount)
	for i := uint32(0); i < propCount; i++ {
		prop, err := decodeSendProp(r)
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}
	return &demo.SendTable{Name: name, NeedsDecoder: needsDecoder, Properties: props}, nil
}

func decodeSendProp(r *bitstream.Reader) (*demo.SendPropDefinition, error) {
	typeU, err := r.ReadUint(5)
	if err != nil {
		return nil, err
	}
	propType := demo.PropTypeByID(byte(typeU))
	if propType == nil {
		return nil, &demo.MalformedSendTableError{Reason: "unknown prop type id"}
	}
	name, err := r.ReadString(0)
	if err != nil {
		return nil, err
	}
	flagsU, err := r.ReadUint(16)
	if err != nil {
		return nil, err
	}
	priorityU, err := r.ReadUint(8)
	if err != nil {
		return nil, err
	}

	def := &demo.SendPropDefinition{
		Name:             name,
		Flags:            demo.SendPropFlag(flagsU),
		Type:             propType,
		Priority:         byte(priorityU),
		PriorityExplicit: true,
		NameHash:         demo.FNVHash(name),
	}

	switch propType.ID {
	case demo.PropTypeIDDataTable:
		ref, err := r.ReadString(0)
		if err != nil {
			return nil, err
		}
		def.TableReference = ref
	case demo.PropTypeIDArray:
		elemCountU, err := r.ReadUint(10)
		if err != nil {
			return nil, err
		}
		def.ElementCount = int(elemCountU)
		innerName, err := r.ReadString(0)
		if err != nil {
			return nil, err
		}
		def.InnerPropName = innerName
	case demo.PropTypeIDString:
		// no additional trailer
	default: // Int, Float, Vector, VectorXY, Int64
		low, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		high, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		bitCountU, err := r.ReadUint(7)
		if err != nil {
			return nil, err
		}
		def.LowValue = low
		def.HighValue = high
		def.BitCount = int(bitCountU)
	}

	return def, nil
}

// flattenClass derives class's FlattenedSendTable per spec.md §3's
// flattening algorithm: recursive DataTable inclusion honoring Exclude and
// Collapsible, then a stable priority sort.
func flattenClass(class *demo.ServerClass, tablesByName map[string]*demo.SendTable) (*demo.FlattenedSendTable, error) {
	table, ok := tablesByName[class.DataTableName]
	if !ok {
		return nil, &demo.MalformedSendTableError{Reason: "unknown data table: " + class.DataTableName}
	}

	var collected []*demo.SendPropDefinition
	if err := collectProps(table, tablesByName, "", &collected); err != nil {
		return nil, err
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return effectivePriority(collected[i]) < effectivePriority(collected[j])
	})

	return &demo.FlattenedSendTable{ClassID: class.ID, Properties: collected}, nil
}

func collectProps(table *demo.SendTable, tablesByName map[string]*demo.SendTable, prefix string, out *[]*demo.SendPropDefinition) error {
	// An Array prop is always preceded in its own table by an
	// InsideArray-flagged template prop describing each element's
	// type/flags/bit_count (spec.md §3 inner_element_name, §4.G InsideArray
	// semantics). That template is consumed here as the following Array
	// prop's InnerProp and never emitted as a flattened entry of its own.
	var pendingInner *demo.SendPropDefinition

	for _, prop := range table.Properties {
		if prop.Flags.Has(demo.PropFlagInsideArray) {
			pendingInner = prop
			continue
		}
		inner := pendingInner
		pendingInner = nil

		if prop.Flags.Has(demo.PropFlagExclude) {
			continue
		}

		if prop.Type.ID == demo.PropTypeIDDataTable {
			nested, ok := tablesByName[prop.TableReference]
			if !ok {
				return &demo.MalformedSendTableError{Reason: "unresolved data table reference: " + prop.TableReference}
			}
			childPrefix := prefix
			if !prop.Flags.Has(demo.PropFlagCollapsible) {
				childPrefix = prefix + prop.Name + "."
			}
			if err := collectProps(nested, tablesByName, childPrefix, out); err != nil {
				return err
			}
			continue
		}

		cloned := *prop
		cloned.Name = prefix + prop.Name
		cloned.NameHash = demo.FNVHash(cloned.Name)
		if prop.Type.ID == demo.PropTypeIDArray {
			cloned.InnerProp = inner
		}
		*out = append(*out, &cloned)
	}
	return nil
}

// effectivePriority implements spec.md §3's prop-priority derivation: an
// explicit wire priority (0..127, including 0) always wins; only a
// synthesized prop that never carried a wire priority at all falls back to
// 128 for ChangesOften props, else 64.
func effectivePriority(def *demo.SendPropDefinition) byte {
	if def.PriorityExplicit {
		return def.Priority
	}
	if def.Flags.Has(demo.PropFlagChangesOften) {
		return 128
	}
	return 64
}
