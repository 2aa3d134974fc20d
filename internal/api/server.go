package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orb-arena/internal/game"
)

// Server combines the HTTP router with the websocket hub. Constructing a
// Server starts only the rate limiter's cleanup goroutine (ended by Stop);
// the HTTP listener only appears in Start, which keeps the constructor
// usable from tests.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	hub         *Hub
	rateLimiter *IPRateLimiter
}

// NewServer builds the server and wires the hub into the engine as its
// snapshot fan-out.
func NewServer(engine *game.Engine) *Server {
	s := &Server{
		engine:      engine,
		hub:         NewHub(engine),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.hub.HandleWebSocket)

	engine.SetNotifier(s.hub)
	engine.SetTickObserver(ObserveTick)
	RegisterEngineGauges(engine)

	return s
}

// Hub exposes the websocket hub, mainly for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves HTTP on addr. Blocks until the listener fails.
func (s *Server) Start(addr string) error {
	log.Printf("🌐 server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
