package game

import (
	"fmt"
	"math"
)

// ProjectileRadius is the collision radius of every projectile.
const ProjectileRadius = 5.0

// Projectile is a ranged attack in flight. It outlives its owner: if the
// firing player disconnects, the projectile keeps traveling until it hits,
// runs out of range, or leaves the map.
type Projectile struct {
	ID             string
	OwnerID        string
	X, Y           float64
	VX, VY         float64 // units per tick at the 60 Hz baseline
	Damage         float64
	RangeRemaining float64
	Color          string
}

// newProjectile spawns a projectile from the owner toward the aim point.
// The spawn position is offset past the owner's body so the projectile never
// collides with its own firing hitbox on the first step.
func newProjectile(seq uint64, owner *Player, aimX, aimY float64) *Projectile {
	angle := math.Atan2(aimY-owner.Y, aimX-owner.X)
	offset := PlayerRadius + ProjectileRadius + 1

	return &Projectile{
		ID:             fmt.Sprintf("proj_%d", seq),
		OwnerID:        owner.ID,
		X:              owner.X + math.Cos(angle)*offset,
		Y:              owner.Y + math.Sin(angle)*offset,
		VX:             math.Cos(angle) * owner.Stats.ProjectileSpeed,
		VY:             math.Sin(angle) * owner.Stats.ProjectileSpeed,
		Damage:         owner.Stats.Damage,
		RangeRemaining: owner.Stats.Range,
		Color:          owner.Color,
	}
}

// Advance moves the projectile for one tick and burns down its range.
// Returns false when the projectile expired or left the map.
func (p *Projectile) Advance(dt, mapW, mapH float64) bool {
	stepX := p.VX * dt * 60
	stepY := p.VY * dt * 60
	p.X += stepX
	p.Y += stepY
	p.RangeRemaining -= math.Hypot(stepX, stepY)

	if p.RangeRemaining <= 0 {
		return false
	}
	if p.X < 0 || p.X > mapW || p.Y < 0 || p.Y > mapH {
		return false
	}
	return true
}

// Hits reports whether the projectile collides with the target this tick.
// Owners never hit themselves and dead players are not collidable.
func (p *Projectile) Hits(target *Player) bool {
	if target.IsDead || target.ID == p.OwnerID {
		return false
	}
	dx := target.X - p.X
	dy := target.Y - p.Y
	return math.Hypot(dx, dy) < ProjectileRadius+PlayerRadius
}
