package parser

import (
	"testing"

	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

func testFlattenedSchema(classID uint16) *demo.FlattenedSendTable {
	return &demo.FlattenedSendTable{
		ClassID: classID,
		Properties: []*demo.SendPropDefinition{
			{Name: "m_iHealth", Type: demo.PropTypeByID(demo.PropTypeIDInt), BitCount: 10},
			{Name: "m_flSpeed", Type: demo.PropTypeByID(demo.PropTypeIDFloat), BitCount: 12, LowValue: 0, HighValue: 1000},
			{Name: "m_vecOrigin", Type: demo.PropTypeByID(demo.PropTypeIDVector), Flags: demo.PropFlagNoScale},
			{Name: "m_szName", Type: demo.PropTypeByID(demo.PropTypeIDString)},
		},
	}
}

func newTestState(classID uint16) *demo.ParserState {
	state := demo.NewParserState()
	state.ServerClasses = []*demo.ServerClass{{ID: classID, Name: "CTFPlayer"}}
	state.Flattened[classID] = testFlattenedSchema(classID)
	return state
}

func TestEntityEnterPVSRoundTrip(t *testing.T) {
	const classID = uint16(1)
	state := newTestState(classID)

	enter := &demo.EntityUpdate{
		EntityIndex: 3,
		Kind:        demo.EntityUpdateEnterPVS,
		Serial:      42,
		ClassID:     classID,
		Props: []demo.EntityPropUpdate{
			{PropIndex: 0, Value: demo.PropValue{Kind: demo.PropValueInt, Int: 100}},
			{PropIndex: 3, Value: demo.PropValue{Kind: demo.PropValueString, Str: "scout"}},
		},
	}

	w := bitstream.NewWriter()
	if err := encodeEntityUpdates(w, state, []*demo.EntityUpdate{enter}); err != nil {
		t.Fatalf("encodeEntityUpdates: %v", err)
	}

	r := bitstream.NewReader(w.Bytes())
	updates, err := decodeEntityUpdates(r, state, 1, 0, false)
	if err != nil {
		t.Fatalf("decodeEntityUpdates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}
	got := updates[0]
	if got.EntityIndex != 3 || got.Serial != 42 || got.ClassID != classID {
		t.Fatalf("got %+v", got)
	}
	ent := state.Entities[3]
	if ent == nil {
		t.Fatal("expected entity 3 to be live")
	}
	if ent.Props[0].Int != 100 || ent.Props[3].Str != "scout" {
		t.Fatalf("entity props: got %+v", ent.Props)
	}
}

func TestEntityPreservePatchesExistingProps(t *testing.T) {
	const classID = uint16(1)
	state := newTestState(classID)
	state.Entities[5] = &demo.Entity{
		Index:   5,
		ClassID: classID,
		Props: map[int]demo.PropValue{
			0: {Kind: demo.PropValueInt, Int: 50},
			3: {Kind: demo.PropValueString, Str: "soldier"},
		},
	}

	preserve := &demo.EntityUpdate{
		EntityIndex: 5,
		Kind:        demo.EntityUpdatePreserve,
		Props: []demo.EntityPropUpdate{
			{PropIndex: 0, Value: demo.PropValue{Kind: demo.PropValueInt, Int: 40}},
		},
	}

	w := bitstream.NewWriter()
	if err := encodeEntityUpdates(w, state, []*demo.EntityUpdate{preserve}); err != nil {
		t.Fatalf("encodeEntityUpdates: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	if _, err := decodeEntityUpdates(r, state, 1, 0, false); err != nil {
		t.Fatalf("decodeEntityUpdates: %v", err)
	}

	ent := state.Entities[5]
	if ent.Props[0].Int != 40 {
		t.Errorf("health not patched: got %d, want 40", ent.Props[0].Int)
	}
	if ent.Props[3].Str != "soldier" {
		t.Errorf("untouched prop should survive unchanged: got %q", ent.Props[3].Str)
	}
}

func TestEntityBaselinesAreIndependent(t *testing.T) {
	const classID = uint16(1)
	state := newTestState(classID)
	state.SetBaseline(0, classID, map[int]demo.PropValue{0: {Kind: demo.PropValueInt, Int: 100}})

	enter := &demo.EntityUpdate{
		EntityIndex: 9,
		Kind:        demo.EntityUpdateEnterPVS,
		Serial:      1,
		ClassID:     classID,
	}
	w := bitstream.NewWriter()
	if err := encodeEntityUpdates(w, state, []*demo.EntityUpdate{enter}); err != nil {
		t.Fatalf("encodeEntityUpdates: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	if _, err := decodeEntityUpdates(r, state, 1, 0, false); err != nil {
		t.Fatalf("decodeEntityUpdates: %v", err)
	}

	// The entity should have inherited the baseline snapshot...
	ent := state.Entities[9]
	if ent.Props[0].Int != 100 {
		t.Fatalf("expected entity to inherit baseline, got %+v", ent.Props)
	}
	// ...but mutating the live entity must not affect the stored baseline
	// (spec.md §5 "baselines are independent").
	ent.Props[0] = demo.PropValue{Kind: demo.PropValueInt, Int: 999}
	if b := state.Baseline(0, classID); b.Props[0].Int != 100 {
		t.Errorf("baseline mutated by live entity edit: got %d, want 100", b.Props[0].Int)
	}
}

func TestEntityVectorNoScaleRoundTrip(t *testing.T) {
	const classID = uint16(1)
	state := newTestState(classID)
	flat := state.FlattenedByClassID(classID)
	def := flat.Properties[2] // m_vecOrigin

	w := bitstream.NewWriter()
	want := demo.PropValue{Kind: demo.PropValueVector, Vector: [3]float32{1.5, -2.25, 100}}
	if err := encodePropValue(w, def, want); err != nil {
		t.Fatalf("encodePropValue: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	got, err := decodePropValue(r, def)
	if err != nil {
		t.Fatalf("decodePropValue: %v", err)
	}
	if got.Vector != want.Vector {
		t.Errorf("got %+v, want %+v", got.Vector, want.Vector)
	}
}

func TestArrayPropDecodesAgainstInnerElementType(t *testing.T) {
	// The inner element is an Int, not a Float, to prove decode/encode
	// dispatch on the real InnerProp definition rather than approximating
	// every element as a Float.
	inner := &demo.SendPropDefinition{Name: "m_items", Type: demo.PropTypeByID(demo.PropTypeIDInt), BitCount: 8, Flags: demo.PropFlagUnsigned}
	arrayDef := &demo.SendPropDefinition{
		Name:          "m_items_array",
		Type:          demo.PropTypeByID(demo.PropTypeIDArray),
		ElementCount:  4,
		InnerPropName: "m_items",
		InnerProp:     inner,
	}

	want := demo.PropValue{Kind: demo.PropValueArray, Array: []demo.PropValue{
		{Kind: demo.PropValueInt, Int: 3},
		{Kind: demo.PropValueInt, Int: 200},
	}}

	w := bitstream.NewWriter()
	if err := encodePropValue(w, arrayDef, want); err != nil {
		t.Fatalf("encodePropValue: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	got, err := decodePropValue(r, arrayDef)
	if err != nil {
		t.Fatalf("decodePropValue: %v", err)
	}
	if len(got.Array) != 2 || got.Array[0].Int != 3 || got.Array[1].Int != 200 {
		t.Fatalf("got %+v, want %+v", got.Array, want.Array)
	}
}

func TestArrayPropWithoutInnerDefinitionRejected(t *testing.T) {
	arrayDef := &demo.SendPropDefinition{
		Name:         "m_badArray",
		Type:         demo.PropTypeByID(demo.PropTypeIDArray),
		ElementCount: 2,
	}
	w := bitstream.NewWriter()
	w.WriteUint(0, bitsNeeded(arrayDef.ElementCount+1)) // element count only, no elements follow
	r := bitstream.NewReader(w.Bytes())
	if _, err := decodePropValue(r, arrayDef); err == nil {
		t.Error("expected an error decoding an array prop with no inner element definition")
	}
}

func TestEntityPropIndexOutOfRangeRejected(t *testing.T) {
	const classID = uint16(1)
	state := newTestState(classID)
	state.Entities[1] = &demo.Entity{Index: 1, ClassID: classID, Props: map[int]demo.PropValue{}}

	dr := bitstream.NewWriter()
	dr.WriteBool(true)
	dr.WriteUBitInt(99) // way past the 4-prop schema
	r := bitstream.NewReader(dr.Bytes())

	if _, err := decodeEntityPropDeltas(r, state, state.Entities[1], classID); err == nil {
		t.Error("expected an error for an out-of-range prop index")
	}
}
