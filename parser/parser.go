/*

Package parser implements the demo parsing pipeline: header -> packets ->
messages -> schema/state updates -> analyser callbacks (spec.md §4.K).

Grounded on icza-screp/repparser/repparser.go's table-driven Sections/parse
shape and its parseProtected recover-and-log idiom, generalized from a
fixed 4-section SC:BW replay to TF2's packet-stream-until-Stop framing.

*/
package parser

import (
	"log"
	"runtime"

	"github.com/demostf/parser-sub001/analyser"
	"github.com/demostf/parser-sub001/bitstream"
	"github.com/demostf/parser-sub001/demo"
)

// Config controls how much of a demo gets decoded, mirroring
// icza-screp/repparser.Config's boolean feature toggles.
type Config struct {
	// AllMessages disables message-type filtering: every message is
	// decoded and offered to the analyser, regardless of its
	// does_handle() set. Filtering is purely a performance optimisation
	// (spec.md §4.K); state-mutating messages are always fully decoded
	// either way.
	AllMessages bool

	// Debug is accepted but not read by Parse: setting it changes nothing,
	// and no raw section bytes are retained.
	Debug bool
}

// ErrParsing is returned by ParseProtected when the underlying parse panics
// (treated as a corrupt or adversarial input, never propagated as a Go
// panic to the caller).
var ErrParsing error = &demo.ReadError{Msg: "parsing"}

// Parse decodes a full demo byte buffer, driving each packet's messages
// through state mutation and then through the analyser callbacks, and
// returns the header plus whatever the analyser produces as its final
// output (spec.md §4.K step 4).
func Parse(data []byte, an analyser.Analyser, cfg Config) (*demo.Header, any, error) {
	r := bitstream.NewReader(data)

	header, err := decodeHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if header.Protocol < demo.MinSupportedProtocol {
		return header, nil, &demo.InvalidProtocolError{Protocol: header.Protocol}
	}

	state := demo.NewParserState()
	state.Protocol = header.Protocol

	if an != nil {
		an.HandleHeader(header)
	}

	filter := allowAllFilter
	if an != nil && !cfg.AllMessages {
		filter = an.DoesHandle
	}

	for {
		pkt, done, err := decodePacket(r, state, filter)
		if err != nil {
			return nil, nil, err
		}

		if pkt != nil {
			if an != nil {
				dispatchPacket(an, pkt, state, filter)
			}
		}

		if done {
			break
		}
	}

	var output any
	if an != nil {
		output = an.IntoOutput(state)
	}
	return header, output, nil
}

func allowAllFilter(byte) bool { return true }

// dispatchPacket feeds a fully-decoded packet's messages (and any
// packet-level metadata) to the analyser in wire order, satisfying
// spec.md §5's ordering guarantee: an analyser observing message k has
// already seen the state effects of messages 0..k.
func dispatchPacket(an analyser.Analyser, pkt demo.Packet, state *demo.ParserState, filter func(byte) bool) {
	switch p := pkt.(type) {
	case *demo.SignonPacket:
		for _, m := range p.Messages {
			if u, ok := m.(*demo.UpdateStringTableMessage); ok {
				for _, e := range u.Entries {
					an.HandleStringEntry(state.StringTables[u.TableID].Name, e.Index, e, state)
				}
			}
			if filter(m.Type().ID) {
				an.HandleMessage(m, p.Tick, state)
			}
		}
	case *demo.MessagePacket:
		for _, m := range p.Messages {
			if u, ok := m.(*demo.UpdateStringTableMessage); ok {
				for _, e := range u.Entries {
					an.HandleStringEntry(state.StringTables[u.TableID].Name, e.Index, e, state)
				}
			}
			if filter(m.Type().ID) {
				an.HandleMessage(m, p.Tick, state)
			}
		}
	case *demo.DataTablesPacket:
		an.HandleDataTables(p.SendTables, p.ServerClasses, state)
	case *demo.StringTablesPacket:
		for _, tbl := range p.Tables {
			for _, e := range tbl.Entries {
				an.HandleStringEntry(tbl.Name, e.Index, e, state)
			}
		}
	}
}

// ParseProtected calls Parse but protects the call from panics in decoder
// bugs or pathological input, mirroring
// icza-screp/repparser.parseProtected's recover+log.Printf+stack-dump
// idiom. This is the one place this package logs anything, matching
// spec.md §1's exclusion of a logging subsystem from the core: there is no
// other log call to generalize.
func ParseProtected(data []byte, an analyser.Analyser, cfg Config) (header *demo.Header, output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("parser: recovered panic: %v", r)
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("parser: stack: %s", buf[:n])
			err = ErrParsing
		}
	}()

	return Parse(data, an, cfg)
}
