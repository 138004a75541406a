package parser

import (
	"testing"

	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

func TestGameEventListRoundTrip(t *testing.T) {
	msg := &demo.GameEventListMessage{
		MessageBase: demo.MessageBase{MessageType: demo.MessageTypeByID(demo.MessageIDGameEventList)},
		Descriptors: []*demo.GameEventDescriptor{
			{ID: 5, Name: "player_death", Entries: []demo.GameEventEntryDescriptor{
				{Type: demo.GameEventEntryInt16, Name: "attacker"},
				{Type: demo.GameEventEntryInt16, Name: "victim"},
				{Type: demo.GameEventEntryString, Name: "weapon"},
			}},
		},
	}

	w := bitstream.NewWriter()
	if err := encodeGameEventList(w, msg); err != nil {
		t.Fatalf("encodeGameEventList: %v", err)
	}

	r := bitstream.NewReader(w.Bytes())
	state := demo.NewParserState()
	decoded, err := decodeGameEventList(r, msg.MessageType, state)
	if err != nil {
		t.Fatalf("decodeGameEventList: %v", err)
	}
	out := decoded.(*demo.GameEventListMessage)
	if len(out.Descriptors) != 1 || out.Descriptors[0].Name != "player_death" || len(out.Descriptors[0].Entries) != 3 {
		t.Fatalf("got %+v", out.Descriptors)
	}
	if state.GameEventDescriptorByID(5) == nil {
		t.Error("expected descriptor 5 to be registered in state")
	}
}

func TestGameEventKnownDescriptorRoundTrip(t *testing.T) {
	state := demo.NewParserState()
	state.RegisterGameEventDescriptor(&demo.GameEventDescriptor{
		ID:   5,
		Name: "player_death",
		Entries: []demo.GameEventEntryDescriptor{
			{Type: demo.GameEventEntryInt16, Name: "attacker"},
			{Type: demo.GameEventEntryString, Name: "weapon"},
		},
	})
	msg := &demo.GameEventMessage{
		MessageBase: demo.MessageBase{MessageType: demo.MessageTypeByID(demo.MessageIDGameEvent)},
		Event: &demo.GameEvent{
			EventID: 5,
			Name:    "player_death",
			Values: []demo.GameEventValue{
				{Type: demo.GameEventEntryInt16, Name: "attacker", Int16: 3},
				{Type: demo.GameEventEntryString, Name: "weapon", Str: "rocketlauncher"},
			},
		},
	}

	w := bitstream.NewWriter()
	if err := encodeGameEvent(w, msg); err != nil {
		t.Fatalf("encodeGameEvent: %v", err)
	}

	r := bitstream.NewReader(w.Bytes())
	decoded, err := decodeGameEvent(r, msg.MessageType, state)
	if err != nil {
		t.Fatalf("decodeGameEvent: %v", err)
	}
	ev := decoded.(*demo.GameEventMessage).Event
	if ev.Values[0].Int16 != 3 || ev.Values[1].Str != "rocketlauncher" {
		t.Fatalf("got %+v", ev.Values)
	}
}

func TestGameEventUnknownDescriptorStaysOpaque(t *testing.T) {
	state := demo.NewParserState() // no descriptors registered
	msg := &demo.GameEventMessage{
		MessageBase: demo.MessageBase{MessageType: demo.MessageTypeByID(demo.MessageIDGameEvent)},
		Event:       &demo.GameEvent{EventID: 99, RawBits: 9, RawData: []byte{0x63, 0x00}},
	}

	w := bitstream.NewWriter()
	if err := encodeGameEvent(w, msg); err != nil {
		t.Fatalf("encodeGameEvent: %v", err)
	}

	r := bitstream.NewReader(w.Bytes())
	decoded, err := decodeGameEvent(r, msg.MessageType, state)
	if err != nil {
		t.Fatalf("decodeGameEvent: %v", err)
	}
	ev := decoded.(*demo.GameEventMessage).Event
	if ev.EventID != 99 || len(ev.Values) != 0 {
		t.Fatalf("expected opaque passthrough, got %+v", ev)
	}
}
