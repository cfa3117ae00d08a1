package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"scavnger-backend/internal/metrics"
	"scavnger-backend/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Should check in production environment Origin
		return true
	},
}

// Connection information
type Connection struct {
	ID          string          `json:"id"`
	UserAddress string          `json:"user_address"`
	Conn        *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	LastPing    time.Time       `json:"last_ping"`
}

// Push message base structure
type PushMessage struct {
	Type        string      `json:"type"`
	Timestamp   string      `json:"timestamp"`
	MessageID   string      `json:"message_id"`
	UserAddress string      `json:"user_address"`
	Data        interface{} `json:"data"`
}

// CheckinStageData is the per-stage progress payload pushed while a check-in
// attempt moves through the submission pipeline.
type CheckinStageData struct {
	ChallengeID uint64 `json:"challenge_id"`
	Stage       string `json:"stage"`
	Detail      string `json:"detail,omitempty"`
	UserMessage string `json:"user_message"`
	Progress    int    `json:"progress"`
}

// User-friendly stage message mapping
var checkinStageMessages = map[pipeline.Stage]struct {
	Message  string
	Progress int
}{
	pipeline.StageEncoded:       {"📦 Proof received, verifying...", 10},
	pipeline.StageVerified:      {"✅ Proof verified by the AI judge", 30},
	pipeline.StageBuilt:         {"🧱 Check-in transaction prepared", 45},
	pipeline.StageSigned:        {"✍️ Transaction signed", 60},
	pipeline.StageSubmitted:     {"⏳ Submitted to blockchain, waiting for confirmation...", 80},
	pipeline.StageConfirmed:     {"⛓️ Check-in confirmed on chain", 95},
	pipeline.StageSynced:        {"🎉 Check-in recorded! Keep the streak going", 100},
	pipeline.StageIndeterminate: {"⏱️ Confirmation is taking longer than expected, check back shortly", 90},
	pipeline.StageRejected:      {"❌ Proof rejected by the AI judge", 0},
	pipeline.StageFailed:        {"⚠️ Submission failed, please retry", 0},
}

// PushService fans check-in progress out to a user's active WebSocket
// connections. One hub goroutine owns registration and broadcast ordering.
type PushService struct {
	connections map[string]*Connection
	userConns   map[string][]*Connection
	hub         chan PushMessage
	register    chan *Connection
	unregister  chan *Connection
	mutex       sync.RWMutex
}

func NewPushService() *PushService {
	service := &PushService{
		connections: make(map[string]*Connection),
		userConns:   make(map[string][]*Connection),
		hub:         make(chan PushMessage, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
	}

	go service.run()
	return service
}

func (s *PushService) run() {
	for {
		select {
		case conn := <-s.register:
			s.handleRegister(conn)

		case conn := <-s.unregister:
			s.handleUnregister(conn)

		case message := <-s.hub:
			s.handleBroadcast(message)
		}
	}
}

func (s *PushService) handleRegister(conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.connections[conn.ID] = conn

	if s.userConns[conn.UserAddress] == nil {
		s.userConns[conn.UserAddress] = make([]*Connection, 0)
	}
	s.userConns[conn.UserAddress] = append(s.userConns[conn.UserAddress], conn)

	metrics.WSActiveConnections.Set(float64(len(s.connections)))
	log.Printf("📱 WebSocket connection registered: user=%s, connID=%s", conn.UserAddress, conn.ID)
}

func (s *PushService) handleUnregister(conn *Connection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.connections[conn.ID]; !exists {
		return
	}
	delete(s.connections, conn.ID)
	close(conn.Send)

	if userConns, exists := s.userConns[conn.UserAddress]; exists {
		for i, c := range userConns {
			if c.ID == conn.ID {
				s.userConns[conn.UserAddress] = append(userConns[:i], userConns[i+1:]...)
				break
			}
		}
		if len(s.userConns[conn.UserAddress]) == 0 {
			delete(s.userConns, conn.UserAddress)
		}
	}

	metrics.WSActiveConnections.Set(float64(len(s.connections)))
	log.Printf("📱 WebSocket connection unregistered: user=%s, connID=%s", conn.UserAddress, conn.ID)
}

func (s *PushService) handleBroadcast(message PushMessage) {
	s.mutex.RLock()
	targets := append([]*Connection(nil), s.userConns[message.UserAddress]...)
	s.mutex.RUnlock()

	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Failed to marshal push message: %v", err)
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- payload:
			metrics.WSMessagesPushed.Inc()
		default:
			// Slow consumer, drop the connection rather than block the hub.
			s.handleUnregister(conn)
		}
	}
}

// PushCheckinStage notifies a user's connections of one pipeline stage
// transition. Unknown stages are pushed with the raw stage name only.
func (s *PushService) PushCheckinStage(userAddress string, challengeID uint64, stage pipeline.Stage, detail string) {
	data := CheckinStageData{
		ChallengeID: challengeID,
		Stage:       string(stage),
		Detail:      detail,
	}
	if friendly, ok := checkinStageMessages[stage]; ok {
		data.UserMessage = friendly.Message
		data.Progress = friendly.Progress
	}

	s.hub <- PushMessage{
		Type:        "checkin_stage_update",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		MessageID:   uuid.New().String(),
		UserAddress: userAddress,
		Data:        data,
	}
}

// HandleWebSocket upgrades the request and pumps push messages until the
// client disconnects.
func (s *PushService) HandleWebSocket(w http.ResponseWriter, r *http.Request, userAddress string) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	conn := &Connection{
		ID:          uuid.New().String(),
		UserAddress: userAddress,
		Conn:        wsConn,
		Send:        make(chan []byte, 64),
		LastPing:    time.Now(),
	}

	s.register <- conn

	go s.writePump(conn)
	go s.readPump(conn)
}

func (s *PushService) writePump(conn *Connection) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-conn.Send:
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *PushService) readPump(conn *Connection) {
	defer func() {
		s.unregister <- conn
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.LastPing = time.Now()
		conn.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// GetActiveConnections returns the number of live connections.
func (s *PushService) GetActiveConnections() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.connections)
}

// GetUserConnections returns the number of live connections for one user.
func (s *PushService) GetUserConnections(userAddress string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.userConns[userAddress])
}
