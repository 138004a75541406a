package demo

import "testing"

func TestStringTableHistoryWrapsAt32(t *testing.T) {
	tbl := NewStringTable("userinfo", 1024)
	for i := 0; i < HistoryCapacity+5; i++ {
		tbl.SetEntry(&StringTableEntry{Index: i, Text: string(rune('a' + i%26)), HasText: true})
	}

	if len(tbl.history.names) != HistoryCapacity {
		t.Fatalf("history length: got %d, want %d", len(tbl.history.names), HistoryCapacity)
	}

	// Most recent push (age 0) should be the last entry's text.
	last, ok := tbl.History(0)
	if !ok {
		t.Fatal("expected an entry at age 0")
	}
	want := string(rune('a' + (HistoryCapacity+4)%26))
	if last != want {
		t.Errorf("history[0]: got %q, want %q", last, want)
	}

	// An age beyond the ring's capacity should report absent.
	if _, ok := tbl.History(HistoryCapacity); ok {
		t.Error("expected no entry beyond history capacity")
	}
}

func TestStringTableEntriesOrderedAndSubstringCompression(t *testing.T) {
	tbl := NewStringTable("userinfo", 16)
	tbl.SetEntry(&StringTableEntry{Index: 0, Text: "Alice", HasText: true})

	prefix, _ := tbl.History(0) // "Alice"
	alicia := prefix[:4] + "ia"
	tbl.SetEntry(&StringTableEntry{Index: 1, Text: alicia, HasText: true})

	if got := tbl.EntryByIndex(0).Text; got != "Alice" {
		t.Errorf("entry 0: got %q", got)
	}
	if got := tbl.EntryByIndex(1).Text; got != "Alicia" {
		t.Errorf("entry 1: got %q", got)
	}
}
