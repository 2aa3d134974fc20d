package api

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"orb-arena/internal/game"
	"orb-arena/internal/protocol"
)

// Connection admission limits.
const (
	MaxWSConnectionsTotal = 500
	MaxWSConnectionsPerIP = 8

	// sendQueueSize bounds each session's outbound queue. Snapshots are
	// idempotent replacements, so dropping the oldest under backpressure
	// loses nothing a later frame doesn't restore.
	sendQueueSize = 16

	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin enforcement is left to the deployment edge; the arena is a
	// public game and admission is bounded per IP below.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type sessionState int

const (
	statePending sessionState = iota // connected, no join yet
	stateJoined                      // owns a player record
)

// session is one client connection. The read pump owns state transitions;
// the write pump drains the bounded send queue.
type session struct {
	hub  *Hub
	conn *websocket.Conn
	ip   string

	send chan []byte
	done chan struct{}
	once sync.Once

	state    sessionState // read-pump goroutine only
	playerID string
}

// Hub tracks sessions and fans frames out to them. It implements
// game.Notifier; both Notifier calls only enqueue and never block, so the
// engine tick can call them while holding its own lock.
type Hub struct {
	engine *game.Engine

	mu       sync.RWMutex
	sessions map[*session]struct{}
	byPlayer map[string]*session

	connLimiter *ConnLimiter
}

// NewHub creates a hub bound to an engine.
func NewHub(engine *game.Engine) *Hub {
	return &Hub{
		engine:      engine,
		sessions:    make(map[*session]struct{}),
		byPlayer:    make(map[string]*session),
		connLimiter: NewConnLimiter(MaxWSConnectionsPerIP),
	}
}

// ClientCount returns the number of open sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast enqueues a frame for every session. Implements game.Notifier.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		s.enqueue(frame)
	}
}

// SendTo enqueues a frame for one player's session. Implements game.Notifier.
func (h *Hub) SendTo(playerID string, frame []byte) {
	h.mu.RLock()
	s := h.byPlayer[playerID]
	h.mu.RUnlock()
	if s != nil {
		s.enqueue(frame)
	}
}

// HandleWebSocket upgrades an HTTP request into a game session.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ connection rejected from %s: total limit reached", ip)
		RecordConnectionRejected("total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.connLimiter.Allow(ip) {
		log.Printf("⚠️ connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		h.connLimiter.Release(ip)
		return
	}

	s := &session{
		hub:  h,
		conn: conn,
		ip:   ip,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	count := len(h.sessions)
	h.mu.Unlock()
	UpdateWSConnections(count)
	log.Printf("📱 client connected from %s (%d total)", ip, count)

	go s.writePump()
	go s.readPump()
}

// shutdown tears the session down exactly once. Safe from either pump.
func (s *session) shutdown() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()

		h := s.hub
		h.mu.Lock()
		delete(h.sessions, s)
		if s.playerID != "" && h.byPlayer[s.playerID] == s {
			delete(h.byPlayer, s.playerID)
		}
		count := len(h.sessions)
		h.mu.Unlock()

		h.connLimiter.Release(s.ip)
		if s.playerID != "" {
			h.engine.RemovePlayer(s.playerID)
		}
		UpdateWSConnections(count)
		log.Printf("📱 client disconnected (%d remaining)", count)
	})
}

// enqueue offers a frame to the session without ever blocking. When the
// queue is full the oldest frame is discarded: snapshots are idempotent and
// the next tick replaces whatever was lost.
func (s *session) enqueue(frame []byte) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- frame:
		return
	default:
	}

	select {
	case <-s.send:
		RecordFrameDropped()
	default:
	}
	select {
	case s.send <- frame:
	default:
		RecordFrameDropped()
	}
}

func (s *session) writePump() {
	defer s.shutdown()
	for {
		select {
		case frame := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
			IncrementWSMessages()
		case <-s.done:
			return
		}
	}
}

func (s *session) readPump() {
	defer s.shutdown()
	s.conn.SetReadLimit(protocol.MaxFrameBytes)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		IncrementFramesReceived()
		s.handleFrame(raw)
	}
}

// handleFrame dispatches one inbound frame through the session state
// machine. Malformed and out-of-state frames are dropped without closing
// the connection, and a panic in any handler is contained to this frame.
func (s *session) handleFrame(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ recovered handling frame from %s: %v", s.ip, r)
		}
	}()

	msg, err := protocol.Decode(raw)
	if err != nil {
		if !errors.Is(err, protocol.ErrUnknownType) {
			log.Printf("dropping bad frame from %s: %v", s.ip, err)
		}
		return
	}

	switch m := msg.(type) {
	case protocol.Join:
		if s.state != statePending {
			return // second join is ignored
		}
		playerID, welcome := s.hub.engine.AddPlayer(m.Name, m.Race)
		s.playerID = playerID
		s.state = stateJoined

		s.hub.mu.Lock()
		s.hub.byPlayer[playerID] = s
		s.hub.mu.Unlock()

		s.enqueue(welcome)

	case protocol.Input:
		if s.state != stateJoined {
			return
		}
		s.hub.engine.StageInput(s.playerID, m.Input)

	case protocol.SelectClass:
		if s.state != stateJoined {
			return
		}
		if frame, ok := s.hub.engine.SelectClass(s.playerID, m.Choice); ok {
			s.enqueue(frame)
		}

	case protocol.Ping:
		if s.state != stateJoined {
			return
		}
		s.enqueue(protocol.MustEncode(protocol.Pong{
			Type:       protocol.TypePong,
			ClientTime: m.Time,
		}))
	}
}
