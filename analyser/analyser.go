/*

Package analyser defines the pluggable-consumer contract (spec.md §4.L,
§6) that observes a decoded demo stream without downcasting: a visitor
over tagged Packet/Message variants, plus a final reduction step.

Grounded on icza-screp/repparser.Config's boolean feature-toggle shape
(spec.md's analogous knob is per-message-type filtering rather than whole
sections) and on the Analyser contract spec.md §6 specifies directly.

*/
package analyser

import "github.com/demostf/parser-sub001/demo"

// Analyser observes a decoded demo stream and produces a derived Output at
// end of stream.
type Analyser interface {
	// DoesHandle reports whether this analyser wants messages of the given
	// type delivered to HandleMessage. The parser uses it directly as its
	// filter (spec.md §4.K) and calls it for every decoded message, so it
	// must be a pure function of msgType.
	DoesHandle(msgType byte) bool

	// HandleHeader is called once, after the demo header is decoded.
	HandleHeader(h *demo.Header)

	// HandleMessage is called for every message the filter set (or
	// AllMessages mode) lets through, after that message's own state
	// mutation has already been applied to state.
	HandleMessage(m demo.Message, tick demo.Tick, state *demo.ParserState)

	// HandleStringEntry is called for every string-table entry from the
	// initial StringTables packet and from later UpdateStringTable
	// messages, regardless of the message filter. Entries carried in a
	// CreateStringTable message are not passed to this callback.
	HandleStringEntry(table string, index int, entry *demo.StringTableEntry, state *demo.ParserState)

	// HandleDataTables is called once, after the DataTables packet's send
	// tables have been parsed and flattened into state.
	HandleDataTables(sendTables []*demo.SendTable, classes []*demo.ServerClass, state *demo.ParserState)

	// HandlePacketMeta receives per-packet metadata (view angles, net-tick
	// info) not otherwise exposed through individual messages. The parser
	// does not decode that metadata from Message/Signon packets and never
	// calls this method.
	HandlePacketMeta(tick demo.Tick, meta *MessagePacketMeta)

	// IntoOutput is called once, after the final Stop packet, and returns
	// this analyser's derived result.
	IntoOutput(state *demo.ParserState) any
}

// MessagePacketMeta carries per-packet metadata not tied to any single
// message (spec.md §6 handle_packet_meta).
type MessagePacketMeta struct {
	ViewAngles [2][3]float32 // per local player slot, pitch/yaw/roll
	NetTick    int32
}

// Base is an embeddable no-op implementation of Analyser: concrete
// analysers can embed it and override only the callbacks they care about,
// the way icza-screp/rep/repcmd/cmd.go's Base provides no-op Params() for
// Cmd implementors to override selectively.
type Base struct{}

func (Base) DoesHandle(byte) bool { return false }
func (Base) HandleHeader(*demo.Header) {}
func (Base) HandleMessage(demo.Message, demo.Tick, *demo.ParserState) {}
func (Base) HandleStringEntry(string, int, *demo.StringTableEntry, *demo.ParserState) {}
func (Base) HandleDataTables([]*demo.SendTable, []*demo.ServerClass, *demo.ParserState) {}
func (Base) HandlePacketMeta(demo.Tick, *MessagePacketMeta) {}
func (Base) IntoOutput(*demo.ParserState) any { return nil }
