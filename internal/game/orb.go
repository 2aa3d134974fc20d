package game

// Orb tuning. Orbs are the only XP source besides kills.
const (
	OrbRadius      = 5.0
	OrbValue       = 10
	OrbSpawnChance = 0.15
	DefaultOrbCap  = 150
)

var orbColors = []string{
	"#ffeaa7", "#fdcb6e", "#55efc4", "#81ecec", "#a29bfe",
}

// Orb is a collectible XP pellet.
type Orb struct {
	ID    string
	X, Y  float64
	Color string
}
