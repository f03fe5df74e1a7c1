package main

import (
	"reflect"
	"testing"

	"github.com/Garsondee/Tilefire/internal/sim"
)

func TestCollectStats_CountsByActor(t *testing.T) {
	entries := []sim.SimLogEntry{
		{Tick: 3, Actor: "E0", Category: "ai", Key: "behavior", Value: "wander → last_known(100,40)"},
		{Tick: 5, Actor: "P", Category: "weapon", Key: "shot"},
		{Tick: 6, Actor: "E0", Category: "weapon", Key: "shot"},
		{Tick: 7, Actor: "E0", Category: "combat", Key: "hit"},
		{Tick: 9, Actor: "P", Category: "combat", Key: "hit"},
		{Tick: 12, Actor: "E0", Category: "combat", Key: "death"},
		{Tick: 14, Actor: "P", Category: "weapon", Key: "reload"},
	}

	rs := collectStats(entries)
	if rs.firstSightTick != 3 || rs.firstShotTick != 5 || rs.firstHitTick != 7 || rs.firstKillTick != 12 {
		t.Fatalf("phase markers: sight=%d shot=%d hit=%d kill=%d",
			rs.firstSightTick, rs.firstShotTick, rs.firstHitTick, rs.firstKillTick)
	}
	if rs.playerDeathTick != -1 {
		t.Fatalf("expected no player death, got tick %d", rs.playerDeathTick)
	}
	if rs.playerShots != 1 || rs.enemyShots != 1 {
		t.Fatalf("shots player=%d enemy=%d, want 1/1", rs.playerShots, rs.enemyShots)
	}
	if rs.hitsLanded != 1 || rs.hitsTaken != 1 || rs.kills != 1 || rs.reloads != 1 {
		t.Fatalf("landed=%d taken=%d kills=%d reloads=%d", rs.hitsLanded, rs.hitsTaken, rs.kills, rs.reloads)
	}
	if got := joinSet(rs.behaviors); got != "last_known" {
		t.Fatalf("behaviors = %q, want last_known", got)
	}
}

func TestFirstTick_MatchesValueSubstring(t *testing.T) {
	entries := []sim.SimLogEntry{
		{Tick: 1, Category: "ai", Key: "behavior", Value: "wander → look_around"},
		{Tick: 4, Category: "ai", Key: "behavior", Value: "look_around → last_known(1,1)"},
	}
	if got := firstTick(entries, "ai", "behavior", ""); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := firstTick(entries, "ai", "behavior", "last_known"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := firstTick(entries, "combat", "hit", ""); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestOutcome(t *testing.T) {
	base := runStats{firstShotTick: 10, playerDeathTick: -1, completeTick: -1, enemiesStart: 2, enemiesLeft: 1}
	cases := map[string]func(rs *runStats){
		"timeout":       func(*runStats) {},
		"player_killed": func(rs *runStats) { rs.playerDeathTick = 40; rs.completeTick = 41 },
		"intel_secured": func(rs *runStats) { rs.completeTick = 90 },
		"area_cleared":  func(rs *runStats) { rs.enemiesLeft = 0 },
		"no_contact":    func(rs *runStats) { rs.firstShotTick = -1 },
	}
	for want, mutate := range cases {
		rs := base
		mutate(&rs)
		if got := outcome(rs); got != want {
			t.Fatalf("outcome = %q, want %q", got, want)
		}
	}
}

func TestAccuracy_Capped(t *testing.T) {
	if got := accuracy(runStats{}); got != 0 {
		t.Fatalf("no shots should give 0, got %v", got)
	}
	if got := accuracy(runStats{playerShots: 4, hitsLanded: 1}); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	if got := accuracy(runStats{playerShots: 1, hitsLanded: 9}); got != 1 {
		t.Fatalf("expected cap at 1, got %v", got)
	}
}

func TestAvgTickString(t *testing.T) {
	if got := avgTickString(nil); got != "n/a" {
		t.Fatalf("expected n/a, got %q", got)
	}
	if got := avgTickString([]int{10, 15}); got != "12.5" {
		t.Fatalf("expected 12.5, got %q", got)
	}
}

func TestTurret_HoldsFireWithoutTarget(t *testing.T) {
	ts := sim.NewTestSim(sim.WithPlayer(48, 48, "pistol"))
	in := turret(ts.Sim)
	if in.Fire || in.Reload {
		t.Fatalf("expected no trigger without a target, got %+v", in)
	}
}

func TestTurret_AimsAtVisibleEnemy(t *testing.T) {
	ts := sim.NewTestSim(sim.WithPlayer(48, 48, "smg"), sim.WithEnemy(240, 48, 0))
	in := turret(ts.Sim)
	if !in.Fire {
		t.Fatal("automatic weapon should fire at a visible enemy")
	}
	if in.Aim != 0 {
		t.Fatalf("expected aim 0 toward the enemy, got %v", in.Aim)
	}
}

func TestRunScenario_DeterministicPerSeed(t *testing.T) {
	a := runScenario(1, 7, duel(7), turret, 600)
	b := runScenario(1, 7, duel(7), turret, 600)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different runs:\n%+v\n%+v", a, b)
	}
	if a.enemiesStart != 1 {
		t.Fatalf("duel should start with one enemy, got %d", a.enemiesStart)
	}
}

func TestScenarioFor_Unknown(t *testing.T) {
	if _, err := scenarioFor("siege", "", sim.DefaultRegistry()); err == nil {
		t.Fatal("expected an error for an unknown scenario")
	}
	build, err := scenarioFor("arena", "", sim.DefaultRegistry())
	if err != nil {
		t.Fatalf("arena: %v", err)
	}
	ts, err := build(3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ts.Enemies) == 0 || ts.IntelRemaining() == 0 {
		t.Fatal("arena should have enemies and intel")
	}
}
