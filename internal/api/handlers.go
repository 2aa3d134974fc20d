package api

import (
	"encoding/json"
	"net/http"

	"orb-arena/internal/game"
)

// stateHandler serves an aggregate world summary with a kill leaderboard.
func stateHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := engine.Stats()
		resp := map[string]interface{}{
			"playerCount": stats.Players,
			"aliveCount":  stats.Alive,
			"orbCount":    stats.Orbs,
			"projectiles": stats.Projectiles,
			"topPlayers":  engine.TopPlayers(10),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// healthHandler is a liveness probe; a rising tick count means the
// simulation loop is running.
func healthHandler(engine *game.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"ticks":  engine.Stats().Ticks,
		})
	}
}
