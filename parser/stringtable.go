// This file implements the string-table engine (spec.md §4.I): the
// initial per-table snapshot decode (used by both the StringTables packet
// and CreateStringTable messages) and the 32-slot history-ring entry
// decode shared by initial snapshots and incremental updates.

package parser

import (
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
	"github.com/demostf/parser-sub001/lzss"
)

// stringTableBody is the parsed, not-yet-registered result of one table's
// CreateStringTable-shaped body, shared by the StringTables packet (which
// carries several) and the CreateStringTable message (which carries one).
type stringTableBody struct {
	table             *demo.StringTable
	maxEntries        int
	numEntries        int
	userDataFixedSize bool
	userDataSize      int
	userDataSizeBits  int
	compressed        bool
	entries           []*demo.StringTableEntry
}

func decodeStringTableBody(r *bitstream.Reader) (*stringTableBody, error) {
	name, err := r.ReadString(0)
	if err != nil {
		return nil, err
	}
	maxEntriesU, err := r.ReadUint(16)
	if err != nil {
		return nil, err
	}
	numEntriesU, err := r.ReadUint(16)
	if err != nil {
		return nil, err
	}
	fixed, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var userDataSize, userDataSizeBits int
	if fixed {
		v, err := r.ReadUint(12)
		if err != nil {
			return nil, err
		}
		userDataSize = int(v)
		b, err := r.ReadUint(4)
		if err != nil {
			return nil, err
		}
		userDataSizeBits = int(b)
	}
	compressed, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	lengthBitsU, err := r.ReadUint(20)
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBits(lengthBitsU)
	if err != nil {
		return nil, err
	}

	table := demo.NewStringTable(name, int(maxEntriesU))
	table.UserDataFixedSize = fixed
	table.FixedUserDataSizeBits = userDataSizeBits

	raw := payload
	if compressed {
		if len(raw) < 4 || string(raw[:4]) != "SNAP" {
			return nil, demo.ErrDecompressionFailed
		}
		decompressed, err := lzss.Decompress(raw[4:])
		if err != nil {
			return nil, err
		}
		raw = decompressed
	}

	entryReader := bitstream.NewReader(raw)
	entries, err := decodeStringTableEntries(entryReader, table, int(numEntriesU))
	if err != nil {
		return nil, err
	}

	return &stringTableBody{
		table:             table,
		maxEntries:        int(maxEntriesU),
		numEntries:        int(numEntriesU),
		userDataFixedSize: fixed,
		userDataSize:      userDataSize,
		userDataSizeBits:  userDataSizeBits,
		compressed:        compressed,
		entries:           entries,
	}, nil
}

// decodeInitialStringTables parses the StringTables packet's payload: a
// byte count of tables, each shaped like a CreateStringTable body.
func decodeInitialStringTables(r *bitstream.Reader, state *demo.ParserState) ([]*demo.StringTable, error) {
	countU, err := r.ReadUint(8)
	if err != nil {
		return nil, err
	}
	tables := make([]*demo.StringTable, 0, countU)
	for i := uint64(0); i < countU; i++ {
		body, err := decodeStringTableBody(r)
		if err != nil {
			return nil, err
		}
		state.RegisterStringTable(body.table)
		tables = append(tables, body.table)
	}
	return tables, nil
}

// decodeStringTableEntries decodes count entries from r against table,
// using and extending table's history ring for substring-compressed names
// (spec.md §4.I steps 1-3).
func decodeStringTableEntries(r *bitstream.Reader, table *demo.StringTable, count int) ([]*demo.StringTableEntry, error) {
	entries := make([]*demo.StringTableEntry, 0, count)
	cursor := -1

	for i := 0; i < count; i++ {
		changeIndex, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		index := cursor + 1
		if changeIndex {
			delta, err := r.ReadUint(5)
			if err != nil {
				return nil, err
			}
			index = cursor + 1 + int(delta)
		}
		cursor = index

		hasString, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		var text string
		if hasString {
			substring, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			if substring {
				historyIdx, err := r.ReadUint(5)
				if err != nil {
					return nil, err
				}
				copyLen, err := r.ReadUint(5)
				if err != nil {
					return nil, err
				}
				prefix, _ := table.History(int(historyIdx))
				if int(copyLen) < len(prefix) {
					prefix = prefix[:copyLen]
				}
				suffix, err := r.ReadString(0)
				if err != nil {
					return nil, err
				}
				text = prefix + suffix
			} else {
				text, err = r.ReadString(0)
				if err != nil {
					return nil, err
				}
			}
		}

		hasExtra, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		var extra []byte
		if hasExtra {
			if table.UserDataFixedSize {
				extra, err = r.ReadBits(uint64(table.FixedUserDataSizeBits))
			} else {
				lenBits, lerr := r.ReadUint(14)
				if lerr != nil {
					return nil, lerr
				}
				extra, err = r.ReadBits(lenBits * 8)
			}
			if err != nil {
				return nil, err
			}
		}

		entry := &demo.StringTableEntry{Index: index, Text: text, HasText: hasString, ExtraData: extra, HasExtra: hasExtra}
		table.SetEntry(entry)
		entries = append(entries, entry)
	}

	return entries, nil
}
