// This file contains the send-table / server-class schema types (spec.md
// §3 SendTable, ServerClass, FlattenedSendTable). The deterministic
// flattening + stable-sort algorithm (spec.md §4.G) that turns a set of
// SendTables into a per-class, index-ordered property list lives in
// parser/sendtable.go.
//
// Grounded on icza-s2prot/bitpackeddec.go's schema-driven instance()
// dispatch for the idea of a type-id-indexed descriptor table consulted by
// the decoder, and on icza-screp/rep/repcmd/types.go's tagged-enum-over-a-
// byte-id idiom for PropType below.

package demo

// SendPropFlag is a bitfield of wire-level property flags (spec.md §3
// SendPropDefinition.flags).
type SendPropFlag uint32

const (
	PropFlagUnsigned SendPropFlag = 1 << iota
	PropFlagCoord
	PropFlagNoScale
	PropFlagRoundDown
	PropFlagRoundUp
	PropFlagNormal
	PropFlagExclude
	PropFlagXYZE
	PropFlagInsideArray
	PropFlagProxyAlwaysYes
	PropFlagIsVectorElem
	PropFlagCollapsible
	PropFlagCoordMP
	PropFlagCoordMPLowPrecision
	PropFlagCoordMPIntegral
	PropFlagCellCoord
	PropFlagCellCoordLowPrecision
	PropFlagCellCoordIntegral
	PropFlagChangesOften
	PropFlagVarInt
)

// Has reports whether flag is set.
func (f SendPropFlag) Has(flag SendPropFlag) bool { return f&flag != 0 }

// PropType tags a SendPropDefinition's wire encoding (spec.md §3
// SendPropDefinition.type).
type PropType struct {
	Enum
	ID byte
}

// Property type ids.
const (
	PropTypeIDInt byte = iota
	PropTypeIDFloat
	PropTypeIDVector
	PropTypeIDVectorXY
	PropTypeIDString
	PropTypeIDArray
	PropTypeIDDataTable
	PropTypeIDInt64
)

var propTypes = []*PropType{
	{Enum{"Int"}, PropTypeIDInt},
	{Enum{"Float"}, PropTypeIDFloat},
	{Enum{"Vector"}, PropTypeIDVector},
	{Enum{"VectorXY"}, PropTypeIDVectorXY},
	{Enum{"String"}, PropTypeIDString},
	{Enum{"Array"}, PropTypeIDArray},
	{Enum{"DataTable"}, PropTypeIDDataTable},
	{Enum{"Int64"}, PropTypeIDInt64},
}

// PropTypeByID returns the PropType for id, or nil if id is out of range
// (the caller must treat that as MalformedSendTableError).
func PropTypeByID(id byte) *PropType {
	if int(id) < len(propTypes) {
		return propTypes[id]
	}
	return nil
}

// SendPropDefinition describes one networked property of a send table.
type SendPropDefinition struct {
	Name             string
	Flags            SendPropFlag
	Type             *PropType
	BitCount         int
	LowValue         float32
	HighValue        float32
	ElementCount     int
	InnerPropName    string // for Array: name of the per-element inner prop
	InnerProp        *SendPropDefinition // for Array: the InsideArray-flagged element template, consumed during flattening
	TableReference   string // for DataTable: referenced table's name
	Priority         byte

	// PriorityExplicit reports whether Priority came from an actual wire
	// byte (true for every prop this parser decodes, since the priority
	// field is always present on the wire) as opposed to a synthesized
	// definition that never had one. Only the latter falls back to the
	// ChangesOften/default priority during flattening (spec.md §3).
	PriorityExplicit bool

	// NameHash caches demo.FNVHash(Name) for the entity decoder's hot path.
	NameHash uint64
}

// SendTable is a parsed, un-flattened send table as it appears in the
// DataTables packet (spec.md §3 SendTable).
type SendTable struct {
	Name         string
	NeedsDecoder bool
	Properties   []*SendPropDefinition
}

// ServerClass names a concrete entity type and the send table describing
// its networked properties (spec.md §3 ServerClass).
type ServerClass struct {
	ID            uint16
	Name          string
	DataTableName string
}

// FlattenedSendTable is the ordered, index-addressable property list an
// entity decodes against, derived from a ServerClass's send table graph
// (spec.md §3 FlattenedSendTable).
type FlattenedSendTable struct {
	ClassID    uint16
	Properties []*SendPropDefinition
}

// PropBitWidth returns ceil(log2(len(Properties))), the number of bits
// needed to index into this table's flattened property list (spec.md §4.G
// invariant).
func (t *FlattenedSendTable) PropBitWidth() uint {
	n := len(t.Properties)
	if n <= 1 {
		return 1
	}
	bits := uint(0)
	for (1 << bits) < n {
		bits++
	}
	return bits
}
