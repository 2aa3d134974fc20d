package game

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"orb-arena/internal/protocol"
)

// World defaults and tick tuning.
const (
	DefaultMapWidth  = 2000.0
	DefaultMapHeight = 2000.0
	DefaultTickRate  = 60
	MaxDeltaSeconds  = 0.05
	SpawnMargin      = 50.0
)

// Notifier delivers serialized frames to connected transports. Both calls
// must be non-blocking: implementations enqueue onto bounded per-connection
// queues and drop under backpressure, never stalling the tick loop.
type Notifier interface {
	Broadcast(frame []byte)
	SendTo(playerID string, frame []byte)
}

// EngineConfig configures a world. Zero values fall back to defaults.
type EngineConfig struct {
	MapWidth  float64
	MapHeight float64
	TickRate  int
	OrbCap    int
	Seed      int64 // 0 means time-based
	Clock     Clock // nil means the system clock
}

type respawnEntry struct {
	playerID string
	due      int64
}

// Engine owns the world. The tick loop is the only goroutine that advances
// the simulation; connection handlers only stage inputs into a mailbox the
// tick drains, or serialize through the engine mutex for join/leave and
// class selection.
type Engine struct {
	mu sync.Mutex

	mapW, mapH float64
	tickRate   int
	orbCap     int

	clock    Clock
	notifier Notifier
	rng      *rand.Rand

	players    map[string]*Player
	playerList []*Player // join order; fixes iteration order for combat and snapshots

	orbs        []*Orb
	projectiles []*Projectile
	respawns    []respawnEntry

	nextOrbID        uint64
	nextProjectileID uint64

	lastTickMs int64
	tickCount  int64

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// intake mailbox: latest input per player, drained at tick start.
	// Separate lock so staging never blocks on the simulation.
	intakeMu sync.Mutex
	pending  map[string]protocol.InputPayload

	onTick func(time.Duration) // metrics hook, may be nil
}

// NewEngine creates a world with no players and no orbs.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.MapWidth <= 0 {
		cfg.MapWidth = DefaultMapWidth
	}
	if cfg.MapHeight <= 0 {
		cfg.MapHeight = DefaultMapHeight
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.OrbCap <= 0 {
		cfg.OrbCap = DefaultOrbCap
	}
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		mapW:       cfg.MapWidth,
		mapH:       cfg.MapHeight,
		tickRate:   cfg.TickRate,
		orbCap:     cfg.OrbCap,
		clock:      cfg.Clock,
		rng:        rand.New(rand.NewSource(seed)),
		players:    make(map[string]*Player),
		pending:    make(map[string]protocol.InputPayload),
		stopChan:   make(chan struct{}),
		lastTickMs: cfg.Clock.NowMillis(),
	}
}

// SetNotifier wires the transport fan-out. Call before Start.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// SetTickObserver installs a per-tick duration callback for metrics.
func (e *Engine) SetTickObserver(f func(time.Duration)) {
	e.onTick = f
}

// Start seeds the orb population and begins the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	for len(e.orbs) < e.orbCap {
		e.addOrb()
	}
	e.lastTickMs = e.clock.NowMillis()
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Engine started: %.0fx%.0f map, %d TPS", e.mapW, e.mapH, e.tickRate)
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Engine stopped")
}

// tick advances the world by one step. The intra-tick order is fixed:
// drain inputs, move, attacks, projectiles, pickups, orb spawn, respawns,
// snapshot. Wall delta is capped so a stalled host cannot teleport entities.
func (e *Engine) tick() {
	start := time.Now()

	e.mu.Lock()
	now := e.clock.NowMillis()
	dt := float64(now-e.lastTickMs) / 1000
	if dt > MaxDeltaSeconds {
		dt = MaxDeltaSeconds
	}
	if dt < 0 {
		dt = 0
	}
	e.lastTickMs = now
	e.tickCount++

	e.drainInputs()
	e.movePlayers(dt)
	e.resolveAttacks(dt)
	e.updateProjectiles(dt)
	e.resolvePickups()
	e.spawnOrb()
	e.processRespawns(now)
	frame := protocol.MustEncode(e.snapshotLocked(now))
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.Broadcast(frame)
	}
	if e.onTick != nil {
		e.onTick(time.Since(start))
	}
}

// drainInputs moves staged inputs into each player's live slot. The staged
// seq becomes the player's last-processed seq and is echoed in the snapshot
// built at the end of this same tick.
func (e *Engine) drainInputs() {
	e.intakeMu.Lock()
	staged := e.pending
	e.pending = make(map[string]protocol.InputPayload)
	e.intakeMu.Unlock()

	for id, payload := range staged {
		p, ok := e.players[id]
		if !ok {
			continue
		}
		p.Input = sanitizeInput(payload, p.X, p.Y)
		if p.Input.Seq > p.LastProcessedSeq {
			p.LastProcessedSeq = p.Input.Seq
		}
	}
}

func (e *Engine) movePlayers(dt float64) {
	for _, p := range e.playerList {
		if p.IsDead {
			continue
		}
		p.integrateMovement(dt, e.mapW, e.mapH)
	}
}

// resolveAttacks burns down cooldowns and fires attacks for players holding
// the attack input with a spent cooldown.
func (e *Engine) resolveAttacks(dt float64) {
	for _, p := range e.playerList {
		if p.IsDead {
			continue
		}
		if p.AttackCooldownMs > 0 {
			p.AttackCooldownMs -= dt * 1000
			if p.AttackCooldownMs < 0 {
				p.AttackCooldownMs = 0
			}
		}
		if p.Input.Attack && p.AttackCooldownMs <= 0 {
			e.resolveAttack(p)
		}
	}
}

// updateProjectiles advances every projectile and resolves collisions.
// The first overlapped target consumes the projectile.
func (e *Engine) updateProjectiles(dt float64) {
	n := 0
	for _, proj := range e.projectiles {
		if !proj.Advance(dt, e.mapW, e.mapH) {
			continue
		}

		hit := false
		for _, target := range e.playerList {
			if proj.Hits(target) {
				// Owner may be gone; the damage still lands.
				e.applyDamage(e.players[proj.OwnerID], target, proj.Damage)
				hit = true
				break
			}
		}
		if hit {
			continue
		}

		e.projectiles[n] = proj
		n++
	}
	e.projectiles = e.projectiles[:n]
}

// resolvePickups hands orbs to the first overlapping eligible player.
// Players waiting on a specialization choice ignore orbs entirely.
func (e *Engine) resolvePickups() {
	n := 0
	for _, orb := range e.orbs {
		collected := false
		for _, p := range e.playerList {
			if p.IsDead || p.CanChooseSpecialization {
				continue
			}
			dx := p.X - orb.X
			dy := p.Y - orb.Y
			if dx*dx+dy*dy < (PlayerRadius+OrbRadius)*(PlayerRadius+OrbRadius) {
				p.XP += OrbValue
				e.checkLevelUp(p)
				collected = true
				break
			}
		}
		if collected {
			continue
		}
		e.orbs[n] = orb
		n++
	}
	e.orbs = e.orbs[:n]
}

// spawnOrb tops up the orb population, at most one orb per tick.
func (e *Engine) spawnOrb() {
	if len(e.orbs) < e.orbCap && e.rng.Float64() < OrbSpawnChance {
		e.addOrb()
	}
}

func (e *Engine) addOrb() {
	e.nextOrbID++
	e.orbs = append(e.orbs, &Orb{
		ID:    fmt.Sprintf("orb_%d", e.nextOrbID),
		X:     OrbRadius + e.rng.Float64()*(e.mapW-2*OrbRadius),
		Y:     OrbRadius + e.rng.Float64()*(e.mapH-2*OrbRadius),
		Color: orbColors[e.rng.Intn(len(orbColors))],
	})
}

// processRespawns fires due respawn entries. A disconnected player's entry
// is dropped by the presence check; disconnect is the only cancellation.
func (e *Engine) processRespawns(now int64) {
	n := 0
	for _, entry := range e.respawns {
		if entry.due > now {
			e.respawns[n] = entry
			n++
			continue
		}
		if p, ok := e.players[entry.playerID]; ok && p.IsDead {
			p.respawn(e.randomSpawnX(), e.randomSpawnY())
		}
	}
	e.respawns = e.respawns[:n]
}

// checkLevelUp promotes a level-1 player who crossed the XP threshold and
// notifies its client that a specialization choice is available.
func (e *Engine) checkLevelUp(p *Player) {
	if p.Level != 1 || p.XP < XPToLevelUp || p.CanChooseSpecialization {
		return
	}
	p.Level = 2
	p.CanChooseSpecialization = true
	e.sendTo(p.ID, protocol.MustEncode(protocol.LevelUpReady{Type: protocol.TypeLevelUpReady}))
}

func (e *Engine) sendTo(playerID string, frame []byte) {
	if e.notifier != nil {
		e.notifier.SendTo(playerID, frame)
	}
}

func (e *Engine) randomSpawnX() float64 {
	return SpawnMargin + e.rng.Float64()*(e.mapW-2*SpawnMargin)
}

func (e *Engine) randomSpawnY() float64 {
	return SpawnMargin + e.rng.Float64()*(e.mapH-2*SpawnMargin)
}

// snapshotLocked builds the per-tick gameState frame. Dead players are
// included with isDead set; clients decide how to render them.
func (e *Engine) snapshotLocked(now int64) protocol.GameState {
	state := e.worldStateLocked()
	return protocol.GameState{
		Type:        protocol.TypeGameState,
		Timestamp:   now,
		Players:     state.Players,
		Orbs:        state.Orbs,
		Projectiles: state.Projectiles,
	}
}

func (e *Engine) worldStateLocked() protocol.WorldState {
	players := make([]protocol.PlayerView, 0, len(e.playerList))
	for _, p := range e.playerList {
		players = append(players, p.view())
	}

	orbs := make([]protocol.OrbView, 0, len(e.orbs))
	for _, o := range e.orbs {
		orbs = append(orbs, protocol.OrbView{
			ID:     o.ID,
			X:      o.X,
			Y:      o.Y,
			Radius: OrbRadius,
			Value:  OrbValue,
			Color:  o.Color,
		})
	}

	projectiles := make([]protocol.ProjectileView, 0, len(e.projectiles))
	for _, pr := range e.projectiles {
		projectiles = append(projectiles, protocol.ProjectileView{
			ID:      pr.ID,
			OwnerID: pr.OwnerID,
			X:       pr.X,
			Y:       pr.Y,
			DX:      pr.VX,
			DY:      pr.VY,
			Radius:  ProjectileRadius,
			Color:   pr.Color,
		})
	}

	return protocol.WorldState{Players: players, Orbs: orbs, Projectiles: projectiles}
}

// AddPlayer creates a player at a random spawn and returns its ID together
// with the serialized welcome frame carrying the initial world state.
// An invalid race defaults to human.
func (e *Engine) AddPlayer(name, race string) (string, []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := newPlayer(sanitizeName(name), ParseRace(race), e.randomSpawnX(), e.randomSpawnY())
	e.players[p.ID] = p
	e.playerList = append(e.playerList, p)

	log.Printf("👤 %s joined as %s (%d players)", p.Name, p.Race, len(e.players))

	welcome := protocol.Welcome{
		Type:         protocol.TypeWelcome,
		PlayerID:     p.ID,
		MapWidth:     e.mapW,
		MapHeight:    e.mapH,
		InitialState: e.worldStateLocked(),
	}
	return p.ID, protocol.MustEncode(welcome)
}

// RemovePlayer destroys a player record on disconnect. Any scheduled
// respawn dies with it; the player's projectiles fly on until expiry.
func (e *Engine) RemovePlayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok {
		return
	}
	delete(e.players, id)
	for i, q := range e.playerList {
		if q == p {
			e.playerList = append(e.playerList[:i], e.playerList[i+1:]...)
			break
		}
	}

	e.intakeMu.Lock()
	delete(e.pending, id)
	e.intakeMu.Unlock()

	log.Printf("👋 %s left (%d players)", p.Name, len(e.players))
}

// StageInput records the latest input frame for a player. Only the newest
// staged frame survives until the next tick; this never touches world state
// and never blocks on the simulation.
func (e *Engine) StageInput(playerID string, in protocol.InputPayload) {
	e.intakeMu.Lock()
	e.pending[playerID] = in
	e.intakeMu.Unlock()
}

// SelectClass applies a specialization choice. It returns the serialized
// classSelected frame, or ok=false when the choice is invalid or the player
// is not eligible; ineligible frames are silently ignored per protocol.
func (e *Engine) SelectClass(playerID, choice string) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[playerID]
	if !ok {
		return nil, false
	}
	spec, valid := ParseSpecialization(choice)
	if !valid || p.Level != 2 || !p.CanChooseSpecialization {
		return nil, false
	}

	p.applySpecialization(spec)
	log.Printf("⭐ %s became %s", p.Name, spec)

	frame := protocol.MustEncode(protocol.ClassSelected{
		Type:   protocol.TypeClassSelected,
		Player: p.view(),
	})
	return frame, true
}

// EngineStats is a point-in-time summary for monitoring endpoints.
type EngineStats struct {
	Players     int
	Alive       int
	Orbs        int
	Projectiles int
	Ticks       int64
}

// Stats returns current world counts.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	alive := 0
	for _, p := range e.playerList {
		if !p.IsDead {
			alive++
		}
	}
	return EngineStats{
		Players:     len(e.playerList),
		Alive:       alive,
		Orbs:        len(e.orbs),
		Projectiles: len(e.projectiles),
		Ticks:       e.tickCount,
	}
}

// TopPlayers returns up to n players sorted by kill count, name-tiebroken
// for a stable leaderboard.
func (e *Engine) TopPlayers(n int) []protocol.PlayerView {
	e.mu.Lock()
	defer e.mu.Unlock()

	sorted := make([]*Player, len(e.playerList))
	copy(sorted, e.playerList)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].KillCount != sorted[j].KillCount {
			return sorted[i].KillCount > sorted[j].KillCount
		}
		return sorted[i].Name < sorted[j].Name
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	views := make([]protocol.PlayerView, 0, n)
	for _, p := range sorted[:n] {
		views = append(views, p.view())
	}
	return views
}
