package game

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"orb-arena/internal/protocol"
)

// PlayerRadius is the collision radius of every player.
const PlayerRadius = 15.0

// Player is the authoritative record for one connected client.
// All mutation happens under the engine lock, on the tick goroutine except
// for join and class selection; the input slot is staged separately and
// drained at the start of each tick.
type Player struct {
	ID             string
	Name           string
	Race           Race
	Specialization Specialization

	X, Y float64

	HP     int
	MaxHP  int
	IsDead bool

	XP                      int
	Level                   int
	CanChooseSpecialization bool
	KillCount               int

	Stats DerivedStats
	Color string

	AttackCooldownMs float64
	Input            InputState
	LastProcessedSeq uint64
}

// newPlayer creates a level-1 player of the given race at a spawn position.
func newPlayer(name string, race Race, x, y float64) *Player {
	stats := StatsFor(race, SpecNone)
	return &Player{
		ID:    uuid.NewString(),
		Name:  name,
		Race:  race,
		X:     x,
		Y:     y,
		HP:    stats.MaxHP,
		MaxHP: stats.MaxHP,
		Level: 1,
		Stats: stats,
		Color: ColorFor(race, SpecNone),
	}
}

// sanitizeName trims, truncates, and backfills an empty display name.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > protocol.MaxNameLength {
		name = name[:protocol.MaxNameLength]
	}
	if name == "" {
		name = "anon"
	}
	return name
}

// integrateMovement applies the player's directional input for one tick.
// The 60x scaling keeps Speed meaningful as units-per-tick even when the
// actual tick rate drifts from the 60 Hz baseline.
func (p *Player) integrateMovement(dt, mapW, mapH float64) {
	dx, dy := 0.0, 0.0
	if p.Input.Up {
		dy--
	}
	if p.Input.Down {
		dy++
	}
	if p.Input.Left {
		dx--
	}
	if p.Input.Right {
		dx++
	}

	if dx != 0 || dy != 0 {
		length := math.Hypot(dx, dy)
		step := p.Stats.Speed * 60 * dt
		p.X += dx / length * step
		p.Y += dy / length * step
	}

	p.clampToBounds(mapW, mapH)
}

func (p *Player) clampToBounds(mapW, mapH float64) {
	p.X = math.Max(PlayerRadius, math.Min(mapW-PlayerRadius, p.X))
	p.Y = math.Max(PlayerRadius, math.Min(mapH-PlayerRadius, p.Y))
}

// applySpecialization rewrites the player's combat profile while preserving
// the current HP fraction. A player at half health stays at half health.
func (p *Player) applySpecialization(spec Specialization) {
	fraction := float64(p.HP) / float64(p.MaxHP)

	p.Specialization = spec
	p.Stats = StatsFor(p.Race, spec)
	p.MaxHP = p.Stats.MaxHP
	p.HP = int(math.Max(1, math.Round(float64(p.MaxHP)*fraction)))
	p.Color = ColorFor(p.Race, spec)
	p.CanChooseSpecialization = false
}

// die marks the player dead and clears movement intent so a respawned body
// does not keep walking on stale input.
func (p *Player) die() {
	p.HP = 0
	p.IsDead = true
	p.Input.Up = false
	p.Input.Down = false
	p.Input.Left = false
	p.Input.Right = false
	p.Input.Attack = false
}

// respawn resets the player to its base race at a fresh position.
// XP is halved, the level and specialization are cleared.
func (p *Player) respawn(x, y float64) {
	p.Specialization = SpecNone
	p.Stats = StatsFor(p.Race, SpecNone)
	p.MaxHP = p.Stats.MaxHP
	p.HP = p.MaxHP
	p.IsDead = false
	p.Level = 1
	p.CanChooseSpecialization = false
	p.XP /= 2
	p.Color = ColorFor(p.Race, SpecNone)
	p.AttackCooldownMs = 0
	p.Input = InputState{Seq: p.Input.Seq}
	p.X = x
	p.Y = y
}

// view builds the client-facing payload for this player.
func (p *Player) view() protocol.PlayerView {
	var class *string
	if p.Specialization != SpecNone {
		s := string(p.Specialization)
		class = &s
	}
	return protocol.PlayerView{
		ID:                    p.ID,
		Name:                  p.Name,
		X:                     p.X,
		Y:                     p.Y,
		HP:                    p.HP,
		MaxHP:                 p.MaxHP,
		Level:                 p.Level,
		XP:                    p.XP,
		Race:                  string(p.Race),
		ClassOrMutation:       class,
		Color:                 p.Color,
		Radius:                PlayerRadius,
		IsDead:                p.IsDead,
		CanChooseLevel2:       p.CanChooseSpecialization,
		LastProcessedInputSeq: p.LastProcessedSeq,
	}
}
