// Package protocol defines the JSON wire frames exchanged with clients.
// Every frame is a JSON object with a "type" field; the codec performs
// typed decoding so handlers never touch raw maps.
package protocol

// Client → server frame types
const (
	TypeJoin        = "join"
	TypeInput       = "input"
	TypeSelectClass = "selectClass"
	TypePing        = "ping"
)

// Server → client frame types
const (
	TypeWelcome       = "welcome"
	TypeGameState     = "gameState"
	TypeLevelUpReady  = "levelUpReady"
	TypeClassSelected = "classSelected"
	TypePong          = "pong"
)

// MaxNameLength caps player display names.
const MaxNameLength = 16

// Join is sent once by a client to enter the arena.
type Join struct {
	Name string `json:"name"`
	Race string `json:"race"`
}

// InputPayload carries one sampled input frame from the client.
// MouseX/MouseY are pointers so a missing coordinate can fall back to the
// player's current position instead of (0, 0).
type InputPayload struct {
	Up     bool     `json:"up"`
	Down   bool     `json:"down"`
	Left   bool     `json:"left"`
	Right  bool     `json:"right"`
	Attack bool     `json:"attack"`
	MouseX *float64 `json:"mouseX"`
	MouseY *float64 `json:"mouseY"`
	Seq    uint64   `json:"seq"`
}

// Input wraps an InputPayload on the wire.
type Input struct {
	Input InputPayload `json:"input"`
}

// SelectClass is sent by an eligible level-2 player to pick a specialization.
type SelectClass struct {
	Choice string `json:"choice"`
}

// Ping requests a pong echo for RTT measurement.
type Ping struct {
	Time float64 `json:"time"`
}

// PlayerView is the per-player payload inside snapshots. It exposes exactly
// the fields clients need for rendering and prediction reconciliation;
// transport and internal fields never appear here.
type PlayerView struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	X                     float64 `json:"x"`
	Y                     float64 `json:"y"`
	HP                    int     `json:"hp"`
	MaxHP                 int     `json:"maxHp"`
	Level                 int     `json:"level"`
	XP                    int     `json:"xp"`
	Race                  string  `json:"race"`
	ClassOrMutation       *string `json:"classOrMutation"`
	Color                 string  `json:"color"`
	Radius                float64 `json:"radius"`
	IsDead                bool    `json:"isDead"`
	CanChooseLevel2       bool    `json:"canChooseLevel2"`
	LastProcessedInputSeq uint64  `json:"lastProcessedInputSeq"`
}

// OrbView is the wire representation of a collectible orb.
type OrbView struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Value  int     `json:"value"`
	Color  string  `json:"color"`
}

// ProjectileView is the wire representation of a projectile in flight.
// Velocity is included so clients can extrapolate between snapshots.
type ProjectileView struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"ownerId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Radius  float64 `json:"radius"`
	Color   string  `json:"color"`
}

// WorldState bundles the three entity lists. It appears inside welcome
// frames and, with a timestamp, as the per-tick gameState frame.
type WorldState struct {
	Players     []PlayerView     `json:"players"`
	Orbs        []OrbView        `json:"orbs"`
	Projectiles []ProjectileView `json:"projectiles"`
}

// Welcome is the join reply carrying the client's authoritative identity.
type Welcome struct {
	Type         string     `json:"type"`
	PlayerID     string     `json:"playerId"`
	MapWidth     float64    `json:"mapWidth"`
	MapHeight    float64    `json:"mapHeight"`
	InitialState WorldState `json:"initialState"`
}

// GameState is the per-tick snapshot broadcast to every connection.
type GameState struct {
	Type        string           `json:"type"`
	Timestamp   int64            `json:"timestamp"`
	Players     []PlayerView     `json:"players"`
	Orbs        []OrbView        `json:"orbs"`
	Projectiles []ProjectileView `json:"projectiles"`
}

// LevelUpReady notifies a single client it may choose a specialization.
type LevelUpReady struct {
	Type string `json:"type"`
}

// ClassSelected confirms a specialization choice with the rewritten stats.
type ClassSelected struct {
	Type   string     `json:"type"`
	Player PlayerView `json:"player"`
}

// Pong echoes the client's ping timestamp.
type Pong struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"clientTime"`
}
