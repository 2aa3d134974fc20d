package game

import (
	"log"
	"math"
)

// Combat tuning.
const (
	BaseAttackCooldownMs = 500.0
	XPToLevelUp          = 100
	KillXPBonus          = 50
	KillXPCap            = 500
	RespawnDelayMs       = 5000
)

// resolveAttack fires one attack for p: a projectile for ranged profiles,
// otherwise a melee sweep over every living player inside reach and arc.
// The caller has already verified the cooldown is spent.
func (e *Engine) resolveAttack(p *Player) {
	if p.Stats.IsRanged() {
		e.nextProjectileID++
		e.projectiles = append(e.projectiles, newProjectile(e.nextProjectileID, p, p.Input.AimX, p.Input.AimY))
	} else {
		e.resolveMelee(p)
	}
	p.AttackCooldownMs = BaseAttackCooldownMs / p.Stats.AttackSpeedModifier
}

// resolveMelee sweeps the attack arc and damages every target it covers.
// The swing is multi-target: all candidates are hit in iteration order.
func (e *Engine) resolveMelee(attacker *Player) {
	atkAngle := math.Atan2(attacker.Input.AimY-attacker.Y, attacker.Input.AimX-attacker.X)
	halfArc := attacker.Stats.MeleeArc / 2

	for _, target := range e.playerList {
		if target == attacker || target.IsDead {
			continue
		}
		dx := target.X - attacker.X
		dy := target.Y - attacker.Y
		if math.Hypot(dx, dy) >= attacker.Stats.Range+PlayerRadius {
			continue
		}
		targetAngle := math.Atan2(dy, dx)
		if math.Abs(normalizeAngle(atkAngle-targetAngle)) >= halfArc {
			continue
		}
		e.applyDamage(attacker, target, attacker.Stats.Damage)
	}
}

// applyDamage runs the damage pipeline: HP loss, lifesteal, and death.
// dealer may be nil when an orphaned projectile lands after its owner
// disconnected; the damage still applies but nobody gets credit.
func (e *Engine) applyDamage(dealer, target *Player, damage float64) {
	target.HP -= int(math.Round(damage))

	if dealer != nil && !dealer.IsDead && dealer.Stats.Lifesteal > 0 {
		heal := int(math.Max(1, math.Round(damage*dealer.Stats.Lifesteal)))
		dealer.HP = min(dealer.MaxHP, dealer.HP+heal)
	}

	if target.HP <= 0 {
		e.killPlayer(dealer, target)
	}
}

// killPlayer finalizes a death: XP transfer, kill credit, and a respawn
// scheduled on the due-time queue. The victim stays in the world (and in
// snapshots, flagged dead) until the respawn fires or it disconnects.
func (e *Engine) killPlayer(dealer, victim *Player) {
	victim.die()

	if dealer != nil && !dealer.IsDead {
		dealer.XP += xpDropFor(victim)
		dealer.KillCount++
		e.checkLevelUp(dealer)
		log.Printf("💀 %s killed %s (kills: %d)", dealer.Name, victim.Name, dealer.KillCount)
	} else {
		log.Printf("💀 %s died", victim.Name)
	}

	e.respawns = append(e.respawns, respawnEntry{
		playerID: victim.ID,
		due:      e.lastTickMs + RespawnDelayMs,
	})
}

// xpDropFor is the XP a killer earns: half the victim's XP plus a flat
// bonus, capped so farming one rich victim cannot skip the progression.
func xpDropFor(victim *Player) int {
	drop := victim.XP/2 + KillXPBonus
	if drop > KillXPCap {
		drop = KillXPCap
	}
	return drop
}

// normalizeAngle maps an angle to (-π, π].
func normalizeAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math.Pi {
		angle -= twoPi
	}
	return angle
}
