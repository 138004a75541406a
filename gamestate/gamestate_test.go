package gamestate

import (
	"testing"

	"github.com/demostf/parser-sub001/demo"
)

func TestDirectHitsMatchesProjectileSpawnedWithinOneTick(t *testing.T) {
	g := New()
	g.HandleDataTables(nil, []*demo.ServerClass{
		{ID: 1, Name: "CTFPlayer"},
		{ID: 10, Name: "CTFProjectile_Rocket"},
	}, demo.NewParserState())

	state := demo.NewParserState()
	state.Entities[5] = &demo.Entity{Index: 5, ClassID: 10, Props: map[int]demo.PropValue{}}

	// Projectile spawns at tick 100...
	g.HandleMessage(&demo.PacketEntitiesMessage{
		Updates: []*demo.EntityUpdate{{EntityIndex: 5, Kind: demo.EntityUpdateEnterPVS, ClassID: 10}},
	}, 100, state)

	// ...and the kill lands one tick later, with a weapon logname that
	// plausibly names the same projectile class.
	g.HandleMessage(&demo.GameEventMessage{
		Event: &demo.GameEvent{Name: "player_death", Values: []demo.GameEventValue{
			{Name: "attacker", Int16: 1},
			{Name: "victim", Int16: 2},
			{Name: "weapon", Str: "tf_projectile_rocket"},
		}},
	}, 101, state)

	world := g.IntoOutput(state).(*World)
	if len(world.Kills) != 1 {
		t.Fatalf("got %d kills, want 1", len(world.Kills))
	}

	hits := world.DirectHits()
	if len(hits) != 1 {
		t.Fatalf("got %d direct hits, want 1: %+v", len(hits), world.ProjectileSpawns)
	}
	if hits[0].Weapon != "tf_projectile_rocket" {
		t.Errorf("got %+v", hits[0])
	}
}

func TestDirectHitsExcludesLateSplashDamage(t *testing.T) {
	g := New()
	g.HandleDataTables(nil, []*demo.ServerClass{
		{ID: 10, Name: "CTFProjectile_Rocket"},
	}, demo.NewParserState())

	state := demo.NewParserState()
	state.Entities[5] = &demo.Entity{Index: 5, ClassID: 10, Props: map[int]demo.PropValue{}}

	g.HandleMessage(&demo.PacketEntitiesMessage{
		Updates: []*demo.EntityUpdate{{EntityIndex: 5, Kind: demo.EntityUpdateEnterPVS, ClassID: 10}},
	}, 100, state)

	// Kill lands 5 ticks after the projectile spawned: too late to be a
	// direct hit under this heuristic.
	g.HandleMessage(&demo.GameEventMessage{
		Event: &demo.GameEvent{Name: "player_death", Values: []demo.GameEventValue{
			{Name: "weapon", Str: "tf_projectile_rocket"},
		}},
	}, 105, state)

	world := g.IntoOutput(state).(*World)
	if hits := world.DirectHits(); len(hits) != 0 {
		t.Errorf("expected no direct hits, got %+v", hits)
	}
}

func TestDirectHitsRequiresWeaponMatch(t *testing.T) {
	g := New()
	g.HandleDataTables(nil, []*demo.ServerClass{
		{ID: 10, Name: "CTFProjectile_Rocket"},
	}, demo.NewParserState())

	state := demo.NewParserState()
	state.Entities[5] = &demo.Entity{Index: 5, ClassID: 10, Props: map[int]demo.PropValue{}}

	g.HandleMessage(&demo.PacketEntitiesMessage{
		Updates: []*demo.EntityUpdate{{EntityIndex: 5, Kind: demo.EntityUpdateEnterPVS, ClassID: 10}},
	}, 100, state)

	// Same tick, but an unrelated weapon (e.g. a hitscan kill that happens
	// to land the same instant a rocket was fired elsewhere).
	g.HandleMessage(&demo.GameEventMessage{
		Event: &demo.GameEvent{Name: "player_death", Values: []demo.GameEventValue{
			{Name: "weapon", Str: "tf_weapon_shotgun"},
		}},
	}, 100, state)

	world := g.IntoOutput(state).(*World)
	if hits := world.DirectHits(); len(hits) != 0 {
		t.Errorf("expected no direct hits for an unrelated weapon, got %+v", hits)
	}
}
