package parser

import (
	"testing"

	"github.com/demostf/parser-sub001/analyser"
	"github.com/demostf/parser-sub001/demo"
)

// collectingAnalyser records every message and header it sees, for
// asserting on a full decode-encode-decode round trip.
type collectingAnalyser struct {
	analyser.Base
	header   *demo.Header
	messages []demo.Message
}

func (c *collectingAnalyser) DoesHandle(byte) bool { return true }
func (c *collectingAnalyser) HandleHeader(h *demo.Header) { c.header = h }
func (c *collectingAnalyser) HandleMessage(m demo.Message, tick demo.Tick, state *demo.ParserState) {
	c.messages = append(c.messages, m)
}

func TestFullDemoRoundTrip(t *testing.T) {
	h := &demo.Header{
		DemoType:     demo.MagicDemoType,
		Version:      4,
		Protocol:     24,
		RawServer:    "server",
		RawNick:      "nick",
		RawMap:       "cp_process",
		RawGame:      "tf",
		Duration:     10,
		Ticks:        660,
		Frames:       600,
		SignonLength: 100,
	}

	sendTables := []*demo.SendTable{
		{Name: "DT_Player", Properties: []*demo.SendPropDefinition{
			{Name: "m_iHealth", Type: demo.PropTypeByID(demo.PropTypeIDInt), BitCount: 10},
		}},
	}
	classes := []*demo.ServerClass{{ID: 1, Name: "CTFPlayer", DataTableName: "DT_Player"}}

	serverInfo := &demo.ServerInfoMessage{
		MessageBase:  demo.MessageBase{MessageType: demo.MessageTypeByID(demo.MessageIDServerInfo)},
		Protocol:     24,
		MaxClients:   24,
		MaxClasses:   1,
		MapName:      "cp_process",
		GameDir:      "tf",
		TickInterval: 0.015,
	}

	packets := []demo.Packet{
		&demo.DataTablesPacket{PacketBase: demo.PacketBase{Tick: 0}, SendTables: sendTables, ServerClasses: classes},
		&demo.MessagePacket{PacketBase: demo.PacketBase{Tick: 1}, Messages: []demo.Message{serverInfo}},
		&demo.StopPacket{PacketBase: demo.PacketBase{Tick: 2}},
	}

	encodeState := demo.NewParserState()
	// Reencode's DataTablesPacket path doesn't need pre-populated state (it
	// only serializes the tables/classes given to it directly); entity
	// encoding does, exercised separately in entity_test.go.
	data, err := Reencode(h, packets, encodeState)
	if err != nil {
		t.Fatalf("Reencode: %v", err)
	}

	an := &collectingAnalyser{}
	gotHeader, _, err := Parse(data, an, Config{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if gotHeader.Protocol != h.Protocol || gotHeader.Map != h.RawMap {
		t.Errorf("header: got %+v", gotHeader)
	}
	if len(an.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(an.messages))
	}
	info, ok := an.messages[0].(*demo.ServerInfoMessage)
	if !ok {
		t.Fatalf("got %T, want *ServerInfoMessage", an.messages[0])
	}
	if info.MapName != serverInfo.MapName || info.TickInterval != serverInfo.TickInterval {
		t.Errorf("got %+v", info)
	}
}
