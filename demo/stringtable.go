// This file contains the StringTable types (spec.md §3 StringTable, §4.I)
// and the fixed-capacity history ring used for prefix-compressed entry
// names.

package demo

// HistoryCapacity is the fixed size of the rolling name-history ring used
// by string-table entry decoding (spec.md §4.I, §8 "history wraps at 32").
const HistoryCapacity = 32

// StringTableEntry is one row of a StringTable (spec.md §3 StringTable
// entries).
type StringTableEntry struct {
	Index     int
	Text      string
	HasText   bool
	ExtraData []byte
	HasExtra  bool
}

// StringTable is a named, indexed list of entries plus optional per-entry
// opaque data, shared between server and client (spec.md §3 StringTable).
type StringTable struct {
	Name                 string
	MaxEntries           int
	Entries              []*StringTableEntry
	FixedUserDataSizeBits int
	UserDataFixedSize    bool

	// history is the rolling buffer of the HistoryCapacity most recently
	// inserted entry names, used to resolve substring-compressed entries.
	history *nameHistory
}

// NewStringTable creates an empty StringTable with the given name and entry
// capacity.
func NewStringTable(name string, maxEntries int) *StringTable {
	return &StringTable{
		Name:       name,
		MaxEntries: maxEntries,
		history:    newNameHistory(),
	}
}

// EntryByIndex returns the entry at index, or nil if none has been set yet.
func (t *StringTable) EntryByIndex(index int) *StringTableEntry {
	for _, e := range t.Entries {
		if e.Index == index {
			return e
		}
	}
	return nil
}

// SetEntry inserts or overwrites the entry at index and pushes its text
// into the history ring.
func (t *StringTable) SetEntry(e *StringTableEntry) {
	if t.history == nil {
		t.history = newNameHistory()
	}
	if e.HasText {
		t.history.push(e.Text)
	}
	if existing := t.EntryByIndex(e.Index); existing != nil {
		*existing = *e
		return
	}
	t.Entries = append(t.Entries, e)
}

// History returns the name at the given age (0 = most recently pushed), and
// whether one exists at that age yet.
func (t *StringTable) History(age int) (string, bool) {
	if t.history == nil {
		return "", false
	}
	return t.history.at(age)
}

// nameHistory is a fixed-capacity FIFO ring of recently inserted entry
// names (spec.md §4.I, §8 "history wraps at 32").
type nameHistory struct {
	names []string // most recent at the end
}

func newNameHistory() *nameHistory {
	return &nameHistory{names: make([]string, 0, HistoryCapacity)}
}

func (h *nameHistory) push(name string) {
	h.names = append(h.names, name)
	if len(h.names) > HistoryCapacity {
		h.names = h.names[len(h.names)-HistoryCapacity:]
	}
}

// at returns the name inserted `age` pushes ago (0 = most recent).
func (h *nameHistory) at(age int) (string, bool) {
	idx := len(h.names) - 1 - age
	if idx < 0 || idx >= len(h.names) {
		return "", false
	}
	return h.names[idx], true
}
