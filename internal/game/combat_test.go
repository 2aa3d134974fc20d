package game

import (
	"math"
	"testing"
)

// TestNormalizeAngle verifies mapping into (-π, π].
func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-math.Pi / 4, -math.Pi / 4},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestMeleeReachIncludesTargetRadius verifies a target just beyond the edge
// of reach + radius is excluded, just inside is hit.
func TestMeleeReachIncludesTargetRadius(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	a := addTestPlayer(t, e, "A", "human", 500, 500)
	a.applySpecialization(SpecWarrior)
	reach := a.Stats.Range + PlayerRadius // 52.5

	inside := addTestPlayer(t, e, "B", "human", 500+reach-0.5, 500)
	outside := addTestPlayer(t, e, "C", "human", 500+reach+0.5, 500)

	a.Input = InputState{Attack: true, AimX: 600, AimY: 500}
	step(e, clock, 16)

	if inside.HP != 85 {
		t.Errorf("inside target HP = %d, want 85", inside.HP)
	}
	if outside.HP != 100 {
		t.Errorf("outside target HP = %d, want 100", outside.HP)
	}
}

// TestLevelOneMeleeIsDegraded verifies the unspecialized swing: 5 damage at
// reduced reach.
func TestLevelOneMeleeIsDegraded(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	a := addTestPlayer(t, e, "A", "human", 500, 500)
	near := addTestPlayer(t, e, "B", "human", 535, 500)  // 35 < 26.25+15
	far := addTestPlayer(t, e, "C", "human", 545, 500)   // 45 > 41.25

	a.Input = InputState{Attack: true, AimX: 600, AimY: 500}
	step(e, clock, 16)

	if near.HP != 95 {
		t.Errorf("near HP = %d, want 95 (5 damage)", near.HP)
	}
	if far.HP != 100 {
		t.Errorf("far HP = %d, want 100 (out of degraded reach)", far.HP)
	}
}

// TestAttackCooldownScalesWithModifier verifies the per-class cooldown.
func TestAttackCooldownScalesWithModifier(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	a := addTestPlayer(t, e, "A", "human", 500, 500)
	a.applySpecialization(SpecHigher) // modifier 0.7

	a.Input = InputState{Attack: true, AimX: 600, AimY: 500}
	step(e, clock, 16)

	want := BaseAttackCooldownMs / 0.7
	if math.Abs(a.AttackCooldownMs-want) > 1e-9 {
		t.Errorf("cooldown = %v, want %v", a.AttackCooldownMs, want)
	}

	// Held attack does not fire again until the cooldown is spent. The
	// cooldown burns at most the capped delta (50 ms) per tick.
	b := addTestPlayer(t, e, "B", "human", 540, 500)
	step(e, clock, 16)
	if b.HP != 100 {
		t.Error("attack fired during cooldown")
	}
	for i := 0; i < 20 && b.HP == 100; i++ {
		step(e, clock, 100)
	}
	if b.HP != 90 {
		t.Errorf("B.HP = %d, want 90 after cooldown elapses", b.HP)
	}
}

// TestVampireLifestealOnKill verifies the race drain heals on the killing
// blow too.
func TestVampireLifestealOnKill(t *testing.T) {
	e, _, _ := newTestEngine(t)
	a := addTestPlayer(t, e, "A", "vampire", 500, 500)
	a.HP = 50
	b := addTestPlayer(t, e, "B", "human", 540, 500)
	b.HP = 3

	e.applyDamage(a, b, a.Stats.Damage) // 5 damage, lifesteal 0.02 → heal 1
	if a.HP != 51 {
		t.Errorf("A.HP = %d, want 51", a.HP)
	}
	if !b.IsDead {
		t.Error("B should be dead")
	}
	if a.KillCount != 1 {
		t.Errorf("KillCount = %d, want 1", a.KillCount)
	}
}

// TestKillXPTriggersLevelUp verifies kill XP feeds the same level gate as
// orbs.
func TestKillXPTriggersLevelUp(t *testing.T) {
	e, _, n := newTestEngine(t)
	a := addTestPlayer(t, e, "A", "human", 500, 500)
	a.XP = 60
	b := addTestPlayer(t, e, "B", "human", 540, 500)
	b.HP = 1

	e.applyDamage(a, b, a.Stats.Damage)

	// drop = min(0/2+50, 500) = 50 → XP 110 ≥ 100.
	if a.XP != 110 {
		t.Errorf("A.XP = %d, want 110", a.XP)
	}
	if a.Level != 2 || !a.CanChooseSpecialization {
		t.Error("kill XP should trigger level up")
	}
	types := n.directTypes(a.ID)
	if len(types) != 1 || types[0] != "levelUpReady" {
		t.Errorf("direct frames = %v, want [levelUpReady]", types)
	}
}
