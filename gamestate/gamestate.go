/*

Package gamestate implements GameStateAnalyser (spec.md §4.M): an
illustrative analyser.Analyser that folds the raw entity/event stream
into a live world view — players, buildings, projectiles, round state,
and kills — the way icza-screp/rep/computed.go derives a Computed view
from a parsed replay's raw commands.

Property access maps a flattened send-prop name to its class's property
index once, via demo.FNVHash (SPEC_FULL.md §6 FNV-1a note), rather than
comparing prop names as strings on every entity update.

*/
package gamestate

import (
	"strings"

	"github.com/demostf/parser-sub001/analyser"
	"github.com/demostf/parser-sub001/demo"
)

// Player is a live player entity's known fields.
type Player struct {
	EntityID  int
	Team      int
	Class     int
	Health    int
	MaxHealth int
	Position  [3]float32
}

// Building is a live building (sentry/dispenser/teleporter) entity.
type Building struct {
	EntityID int
	Kind     string
	Team     int
	Level    int
	Sapped   bool
	Position [3]float32
}

// Projectile is a live in-flight projectile entity (rockets, grenades,
// stickies, ...).
type Projectile struct {
	EntityID int
	Kind     string
	Position [3]float32
}

// ProjectileSpawn records a projectile-class entity's creation tick, kept
// even after the entity is later deleted (on impact or expiry) so
// direct-hit correlation can still reference when it first appeared.
type ProjectileSpawn struct {
	Kind        string
	CreatedTick demo.Tick
}

// Kill records one player_death game event.
type Kill struct {
	Tick     demo.Tick
	Attacker int16
	Victim   int16
	Weapon   string
}

// ChatMessage records a chat-shaped game event, when the demo's event
// descriptor table happens to carry one (TF2 chat is usually a
// UserMessage this parser treats as opaque, spec.md §1/§4.F; this is
// best-effort).
type ChatMessage struct {
	Tick demo.Tick
	Text string
}

// World is the live state GameStateAnalyser accumulates and returns as its
// IntoOutput result.
type World struct {
	Players          map[int]*Player
	Buildings        map[int]*Building
	Projectiles      map[int]*Projectile
	ProjectileSpawns []ProjectileSpawn
	Kills            []Kill
	Chat             []ChatMessage
	RoundState       string
}

// DirectHits returns the kills attributable to a projectile-class entity
// created within one tick of the kill (original_source/src/bin/
// direct_hits.rs's derived stat). This parser doesn't model Source's
// per-entity hit collisions, so a kill whose weapon name matches a
// projectile spawned at most one tick before or after it is treated as a
// direct hit,
// as opposed to splash damage landing several ticks after the projectile
// was fired.
func (w *World) DirectHits() []Kill {
	var hits []Kill
	for _, k := range w.Kills {
		for _, s := range w.ProjectileSpawns {
			delta := k.Tick - s.CreatedTick
			if delta < 0 {
				delta = -delta
			}
			if delta <= 1 && weaponMatchesProjectileClass(k.Weapon, s.Kind) {
				hits = append(hits, k)
				break
			}
		}
	}
	return hits
}

// weaponMatchesProjectileClass reports whether a player_death event's
// weapon logname (e.g. "tf_projectile_rocket") plausibly names the same
// weapon as a projectile server class (e.g. "CTFProjectile_Rocket").
func weaponMatchesProjectileClass(weapon, projectileClass string) bool {
	name := strings.ToLower(strings.TrimPrefix(projectileClass, "CTFProjectile_"))
	return name != "" && strings.Contains(strings.ToLower(weapon), name)
}

// GameStateAnalyser is the illustrative analyser of spec.md §4.M.
type GameStateAnalyser struct {
	analyser.Base

	world      *World
	classNames map[uint16]string
	propIndex  map[uint16]map[uint64]int // class id -> hash(prop name) -> flattened index
}

// New returns an empty GameStateAnalyser ready to be driven by parser.Parse.
func New() *GameStateAnalyser {
	return &GameStateAnalyser{
		world: &World{
			Players:     map[int]*Player{},
			Buildings:   map[int]*Building{},
			Projectiles: map[int]*Projectile{},
		},
	}
}

// DoesHandle declares the message types this analyser needs delivered to
// HandleMessage; everything else is still fully decoded for state (spec.md
// §4.K) but skipped for this analyser's own callback.
func (g *GameStateAnalyser) DoesHandle(msgType byte) bool {
	return msgType == demo.MessageIDPacketEntities || msgType == demo.MessageIDGameEvent
}

// HandleDataTables caches each class's name and a name-hash -> flattened
// index map, so entity updates can look up prop values by name in O(1)
// without repeated string comparisons.
func (g *GameStateAnalyser) HandleDataTables(sendTables []*demo.SendTable, classes []*demo.ServerClass, state *demo.ParserState) {
	g.classNames = make(map[uint16]string, len(classes))
	g.propIndex = make(map[uint16]map[uint64]int, len(classes))
	for _, c := range classes {
		g.classNames[c.ID] = c.Name
		flat := state.FlattenedByClassID(c.ID)
		if flat == nil {
			continue
		}
		idx := make(map[uint64]int, len(flat.Properties))
		for i, p := range flat.Properties {
			idx[p.NameHash] = i
		}
		g.propIndex[c.ID] = idx
	}
}

// HandleMessage folds one message's effects into the live world view.
func (g *GameStateAnalyser) HandleMessage(m demo.Message, tick demo.Tick, state *demo.ParserState) {
	switch msg := m.(type) {
	case *demo.PacketEntitiesMessage:
		g.applyEntityUpdates(msg, tick, state)
	case *demo.GameEventMessage:
		g.applyGameEvent(msg, tick)
	}
}

// IntoOutput returns the accumulated World.
func (g *GameStateAnalyser) IntoOutput(state *demo.ParserState) any {
	return g.world
}

func (g *GameStateAnalyser) applyEntityUpdates(msg *demo.PacketEntitiesMessage, tick demo.Tick, state *demo.ParserState) {
	for _, u := range msg.Updates {
		if u.Kind == demo.EntityUpdateDelete {
			delete(g.world.Players, u.EntityIndex)
			delete(g.world.Buildings, u.EntityIndex)
			delete(g.world.Projectiles, u.EntityIndex)
			continue
		}

		ent := state.Entities[u.EntityIndex]
		if ent == nil {
			continue
		}
		className := g.classNames[u.ClassID]

		switch {
		case className == "CTFPlayer":
			g.applyPlayer(u.EntityIndex, u.ClassID, ent)
		case isBuildingClass(className):
			g.applyBuilding(u.EntityIndex, u.ClassID, className, ent)
		case strings.Contains(className, "Projectile"):
			if u.Kind == demo.EntityUpdateEnterPVS {
				g.world.ProjectileSpawns = append(g.world.ProjectileSpawns, ProjectileSpawn{Kind: className, CreatedTick: tick})
			}
			g.applyProjectile(u.EntityIndex, u.ClassID, className, ent)
		}
	}
}

func isBuildingClass(name string) bool {
	switch name {
	case "CObjectSentrygun", "CObjectDispenser", "CObjectTeleporter":
		return true
	}
	return false
}

func (g *GameStateAnalyser) applyPlayer(entityIndex int, classID uint16, ent *demo.Entity) {
	p := g.world.Players[entityIndex]
	if p == nil {
		p = &Player{EntityID: entityIndex}
		g.world.Players[entityIndex] = p
	}
	if v, ok := g.propValue(classID, ent, "m_iTeamNum"); ok {
		p.Team = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_iHealth"); ok {
		p.Health = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_iMaxHealth"); ok {
		p.MaxHealth = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_PlayerClass.m_iClass"); ok {
		p.Class = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_vecOrigin"); ok {
		p.Position = v.Vector
	}
}

func (g *GameStateAnalyser) applyBuilding(entityIndex int, classID uint16, className string, ent *demo.Entity) {
	b := g.world.Buildings[entityIndex]
	if b == nil {
		b = &Building{EntityID: entityIndex, Kind: className}
		g.world.Buildings[entityIndex] = b
	}
	if v, ok := g.propValue(classID, ent, "m_iTeamNum"); ok {
		b.Team = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_iUpgradeLevel"); ok {
		b.Level = int(v.Int)
	}
	if v, ok := g.propValue(classID, ent, "m_bHasSapper"); ok {
		b.Sapped = v.Int != 0
	}
	if v, ok := g.propValue(classID, ent, "m_vecOrigin"); ok {
		b.Position = v.Vector
	}
}

func (g *GameStateAnalyser) applyProjectile(entityIndex int, classID uint16, className string, ent *demo.Entity) {
	pr := g.world.Projectiles[entityIndex]
	if pr == nil {
		pr = &Projectile{EntityID: entityIndex, Kind: className}
		g.world.Projectiles[entityIndex] = pr
	}
	if v, ok := g.propValue(classID, ent, "m_vecOrigin"); ok {
		pr.Position = v.Vector
	}
}

// propValue looks up ent's current value for a flattened prop named name,
// via the name-hash index cached by HandleDataTables.
func (g *GameStateAnalyser) propValue(classID uint16, ent *demo.Entity, name string) (demo.PropValue, bool) {
	idx, ok := g.propIndex[classID]
	if !ok {
		return demo.PropValue{}, false
	}
	i, ok := idx[demo.FNVHash(name)]
	if !ok {
		return demo.PropValue{}, false
	}
	v, ok := ent.Props[i]
	return v, ok
}

func (g *GameStateAnalyser) applyGameEvent(msg *demo.GameEventMessage, tick demo.Tick) {
	ev := msg.Event
	switch ev.Name {
	case "player_death":
		k := Kill{Tick: tick}
		for _, v := range ev.Values {
			switch v.Name {
			case "attacker":
				k.Attacker = v.Int16
			case "victim", "userid":
				k.Victim = v.Int16
			case "weapon":
				k.Weapon = v.Str
			}
		}
		g.world.Kills = append(g.world.Kills, k)
	case "round_start":
		g.world.RoundState = "started"
	case "round_win", "teamplay_round_win":
		g.world.RoundState = "won"
	case "player_chat":
		for _, v := range ev.Values {
			if v.Name == "text" {
				g.world.Chat = append(g.world.Chat, ChatMessage{Tick: tick, Text: v.Str})
			}
		}
	}
}
