package parser

import (
	"testing"

	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

func TestServerInfoRoundTrip(t *testing.T) {
	msg := &demo.ServerInfoMessage{
		MessageBase:  demo.MessageBase{MessageType: demo.MessageTypeByID(demo.MessageIDServerInfo)},
		Protocol:     24,
		ServerCount:  1,
		IsDedicated:  true,
		MaxClients:   24,
		MaxClasses:   300,
		MapName:      "cp_badlands",
		GameDir:      "tf",
		TickInterval: 0.015,
	}
	w := bitstream.NewWriter()
	if err := encodeServerInfo(w, msg); err != nil {
		t.Fatalf("encodeServerInfo: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	decoded, err := decodeServerInfo(r, msg.MessageType)
	if err != nil {
		t.Fatalf("decodeServerInfo: %v", err)
	}
	got := decoded.(*demo.ServerInfoMessage)
	if got.Protocol != msg.Protocol || got.MapName != msg.MapName || got.IsDedicated != msg.IsDedicated || got.TickInterval != msg.TickInterval {
		t.Fatalf("got %+v", got)
	}
}

func TestOpaqueMessageWantedVsSkipped(t *testing.T) {
	mt := demo.MessageTypeByID(demo.MessageIDPrint)
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	bitLen := uint64(len(payload) * 8)

	w := bitstream.NewWriter()
	w.WriteUBitInt(uint32(bitLen))
	w.WriteBits(payload, bitLen)
	// trailer to prove skipping doesn't overrun into the next field
	w.WriteUint(0xAB, 8)

	r := bitstream.NewReader(w.Bytes())
	msg, err := decodeOpaqueMessage(r, mt, false)
	if err != nil {
		t.Fatalf("decodeOpaqueMessage (skip): %v", err)
	}
	if msg.(*demo.OpaqueMessage).Data != nil {
		t.Errorf("skipped message should carry no data")
	}
	trailer, err := r.ReadUint(8)
	if err != nil || trailer != 0xAB {
		t.Fatalf("trailer after skip: got %#x, %v", trailer, err)
	}

	w2 := bitstream.NewWriter()
	w2.WriteUBitInt(uint32(bitLen))
	w2.WriteBits(payload, bitLen)
	r2 := bitstream.NewReader(w2.Bytes())
	msg2, err := decodeOpaqueMessage(r2, mt, true)
	if err != nil {
		t.Fatalf("decodeOpaqueMessage (want): %v", err)
	}
	if string(msg2.(*demo.OpaqueMessage).Data) != string(payload) {
		t.Errorf("wanted message data: got %v, want %v", msg2.(*demo.OpaqueMessage).Data, payload)
	}
}

func TestUnknownMessageTypeRejected(t *testing.T) {
	// id 9 falls in a gap Source's message table never defines (8 is
	// ServerInfo, 10 is ClassInfo); it must be rejected, not silently
	// framed as opaque data.
	const unknownID = 9
	mt := demo.MessageTypeByID(unknownID)
	if demo.IsKnownMessageType(unknownID) {
		t.Fatalf("test fixture assumption broken: %d is a known message type", unknownID)
	}

	w := bitstream.NewWriter()
	w.WriteUBitInt(8)
	w.WriteBits([]byte{0xff}, 8)
	r := bitstream.NewReader(w.Bytes())

	_, err := decodeMessageBody(r, mt, demo.NewParserState(), true)
	if err == nil {
		t.Fatal("expected an error for an unrecognized message type id")
	}
	if _, ok := err.(*demo.UnknownMessageTypeError); !ok {
		t.Fatalf("got %T, want *demo.UnknownMessageTypeError", err)
	}
}

func TestMessageFilterGatesDecodedData(t *testing.T) {
	mt := demo.MessageIDPrint
	w := bitstream.NewWriter()
	w.WriteUint(uint64(mt), 6)
	w.WriteUBitInt(16)
	w.WriteBits([]byte{1, 2}, 16)

	r := bitstream.NewReader(w.Bytes())
	state := demo.NewParserState()
	messages, err := decodeMessages(r, state, func(byte) bool { return false })
	if err != nil {
		t.Fatalf("decodeMessages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].(*demo.OpaqueMessage).Data != nil {
		t.Error("filtered-out message should not retain its payload")
	}
}
