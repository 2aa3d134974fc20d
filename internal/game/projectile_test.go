package game

import (
	"math"
	"testing"
)

// TestNewProjectileSpawn verifies the spawn offset and velocity follow the
// aim angle exactly.
func TestNewProjectileSpawn(t *testing.T) {
	owner := newPlayer("A", RaceHuman, 200, 200)
	owner.applySpecialization(SpecMage)

	proj := newProjectile(1, owner, 1000, 200)

	// Offset = radius + projectile radius + 1 = 21 along +x.
	if math.Abs(proj.X-221) > 1e-9 || math.Abs(proj.Y-200) > 1e-9 {
		t.Errorf("spawn = (%v, %v), want (221, 200)", proj.X, proj.Y)
	}
	if math.Abs(proj.VX-7) > 1e-9 || math.Abs(proj.VY) > 1e-9 {
		t.Errorf("velocity = (%v, %v), want (7, 0)", proj.VX, proj.VY)
	}
	if proj.RangeRemaining != 400 {
		t.Errorf("RangeRemaining = %v, want 400", proj.RangeRemaining)
	}
	if proj.Damage != 10 {
		t.Errorf("Damage = %v, want 10", proj.Damage)
	}
	if proj.OwnerID != owner.ID {
		t.Error("owner mismatch")
	}
}

// TestNewProjectileAimAngle verifies spawn angle equals atan2 of the aim
// vector for off-axis aims.
func TestNewProjectileAimAngle(t *testing.T) {
	owner := newPlayer("A", RaceHuman, 100, 100)
	owner.applySpecialization(SpecMage)

	aimX, aimY := 400.0, 700.0
	proj := newProjectile(1, owner, aimX, aimY)

	want := math.Atan2(aimY-100, aimX-100)
	got := math.Atan2(proj.VY, proj.VX)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("angle = %v, want %v", got, want)
	}
}

// TestProjectileExpiresAtRange verifies removal once travel exceeds range.
func TestProjectileExpiresAtRange(t *testing.T) {
	owner := newPlayer("A", RaceHuman, 1000, 1000)
	owner.applySpecialization(SpecMage)
	proj := newProjectile(1, owner, 2000, 1000)

	dt := 1.0 / 60
	alive := true
	steps := 0
	for alive && steps < 100 {
		alive = proj.Advance(dt, 4000, 4000)
		steps++
	}
	if alive {
		t.Fatal("projectile never expired")
	}
	// 400 range at 7 units/step → 58 steps.
	if steps < 55 || steps > 60 {
		t.Errorf("expired after %d steps, want ~58", steps)
	}
}

// TestProjectileRemovedOffMap verifies out-of-bounds removal.
func TestProjectileRemovedOffMap(t *testing.T) {
	owner := newPlayer("A", RaceHuman, 30, 1000)
	owner.applySpecialization(SpecMage)
	proj := newProjectile(1, owner, -500, 1000) // aims off the west edge

	dt := 1.0 / 60
	alive := true
	for i := 0; alive && i < 20; i++ {
		alive = proj.Advance(dt, 2000, 2000)
	}
	if alive {
		t.Error("projectile should be removed off map")
	}
	if proj.RangeRemaining <= 0 {
		t.Error("removal should be due to bounds, not range")
	}
}

// TestProjectileHits verifies collision rules: owner immune, dead players
// not collidable, radius sum respected.
func TestProjectileHits(t *testing.T) {
	owner := newPlayer("A", RaceHuman, 100, 100)
	owner.applySpecialization(SpecMage)
	proj := newProjectile(1, owner, 400, 100)

	target := newPlayer("B", RaceHuman, proj.X+15, proj.Y)
	if !proj.Hits(target) {
		t.Error("target within radius sum should be hit")
	}

	target.IsDead = true
	if proj.Hits(target) {
		t.Error("dead target should not be hit")
	}
	target.IsDead = false

	far := newPlayer("C", RaceHuman, proj.X+25, proj.Y)
	if proj.Hits(far) {
		t.Error("target beyond radius sum should not be hit")
	}

	owner.X, owner.Y = proj.X, proj.Y
	if proj.Hits(owner) {
		t.Error("owner should never be hit")
	}
}
