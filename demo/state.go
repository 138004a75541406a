// This file contains ParserState, the process-wide session state threaded
// explicitly through every decoder and analyser callback (spec.md §3
// ParserState, §9 "global parser state is threaded explicitly... there is
// no ambient state").

package demo

// ParserState holds everything decoded so far that later decode steps or an
// analyser need to interpret subsequent packets: the send-table schema,
// its per-class flattening, per-class baselines, string tables, and the
// game-event descriptor table.
type ParserState struct {
	Protocol int32

	ServerClasses   []*ServerClass
	ServerClassByID map[uint16]*ServerClass
	SendTables      []*SendTable
	SendTableByName map[string]*SendTable

	// Flattened holds the flattened, priority-sorted property list per
	// class id (spec.md §4.G).
	Flattened map[uint16]*FlattenedSendTable

	// Baselines holds two full-snapshot baseline slots per class id
	// (spec.md §9: "this spec mandates full snapshots (two per class)").
	Baselines [2]map[uint16]*Baseline

	// Entities holds every entity currently believed to be live, keyed by
	// entity index.
	Entities map[int]*Entity

	StringTables     []*StringTable
	StringTableByName map[string]*StringTable

	GameEventDescriptors   []*GameEventDescriptor
	gameEventDescByID      map[int]*GameEventDescriptor
}

// NewParserState returns an empty ParserState, ready to be populated by the
// driver as DataTables/ServerInfo/CreateStringTable/GameEventList
// packets/messages arrive.
func NewParserState() *ParserState {
	return &ParserState{
		ServerClassByID:    map[uint16]*ServerClass{},
		SendTableByName:    map[string]*SendTable{},
		Flattened:          map[uint16]*FlattenedSendTable{},
		Baselines:          [2]map[uint16]*Baseline{{}, {}},
		Entities:           map[int]*Entity{},
		StringTableByName:  map[string]*StringTable{},
		gameEventDescByID:  map[int]*GameEventDescriptor{},
	}
}

// ClassByID returns the ServerClass for id, or nil.
func (s *ParserState) ClassByID(id uint16) *ServerClass {
	return s.ServerClassByID[id]
}

// FlattenedByClassID returns the flattened send table for a class id, or
// nil if the schema hasn't been decoded (yet).
func (s *ParserState) FlattenedByClassID(id uint16) *FlattenedSendTable {
	return s.Flattened[id]
}

// StringTableByNameLookup returns a string table by name, or nil.
func (s *ParserState) StringTableByNameLookup(name string) *StringTable {
	return s.StringTableByName[name]
}

// RegisterStringTable adds (or replaces) a string table by name.
func (s *ParserState) RegisterStringTable(t *StringTable) {
	s.StringTableByName[t.Name] = t
	s.StringTables = append(s.StringTables, t)
}

// RegisterGameEventDescriptor adds (or replaces) a game-event descriptor.
func (s *ParserState) RegisterGameEventDescriptor(d *GameEventDescriptor) {
	s.gameEventDescByID[d.ID] = d
	s.GameEventDescriptors = append(s.GameEventDescriptors, d)
}

// GameEventDescriptorByID returns the descriptor for id, or nil if unknown.
func (s *ParserState) GameEventDescriptorByID(id int) *GameEventDescriptor {
	return s.gameEventDescByID[id]
}

// Baseline returns the baseline snapshot for (slot, classID), or nil.
func (s *ParserState) Baseline(slot int, classID uint16) *Baseline {
	return s.Baselines[slot][classID]
}

// SetBaseline stores a baseline snapshot for (slot, classID), cloning props
// so later mutation of the source entity cannot affect the stored baseline.
func (s *ParserState) SetBaseline(slot int, classID uint16, props map[int]PropValue) {
	cloned := make(map[int]PropValue, len(props))
	for k, v := range props {
		cloned[k] = v
	}
	s.Baselines[slot][classID] = &Baseline{ClassID: classID, Props: cloned}
}
