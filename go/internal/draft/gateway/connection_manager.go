package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections for draft room events.
type ConnectionManager struct {
	roomConnections map[uuid.UUID]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents one WebSocket client.
type Connection struct {
	ID      string
	UserID  string
	RoomID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is one event to fan out to a room's connections.
type BroadcastMessage struct {
	RoomID uuid.UUID
	Event  events.Envelope
	UserID string // optional: if set, only send to this user
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a WebSocket connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		roomConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages. Blocks until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Broadcast queues an event for fan-out to a room's connections.
func (cm *ConnectionManager) Broadcast(msg BroadcastMessage) {
	select {
	case cm.broadcastCh <- msg:
	default:
		log.Warn().
			Str("room_id", msg.RoomID.String()).
			Str("event_type", string(msg.Event.Type)).
			Msg("broadcast channel full, dropping event")
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket connection and
// registers it with the room's pool.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID string, roomID uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		RoomID:      roomID,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.mu.Lock()
	if cm.roomConnections[roomID] == nil {
		cm.roomConnections[roomID] = make(map[*Connection]bool)
	}
	cm.roomConnections[roomID][connection] = true
	total := len(cm.roomConnections[roomID])
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", userID).
		Str("room_id", roomID.String()).
		Int("room_connections", total).
		Msg("websocket connected")

	go connection.writePump()
	go connection.readPump()
	return nil
}

// handleBroadcast delivers an event to every connection in the room's pool.
func (cm *ConnectionManager) handleBroadcast(msg BroadcastMessage) {
	data, err := json.Marshal(msg.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}

	cm.mu.RLock()
	conns := cm.roomConnections[msg.RoomID]
	targets := make([]*Connection, 0, len(conns))
	for conn := range conns {
		if msg.UserID != "" && conn.UserID != msg.UserID {
			continue
		}
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Slow consumer; drop the connection rather than the room.
			log.Warn().
				Str("connection_id", conn.ID).
				Str("room_id", msg.RoomID.String()).
				Msg("send buffer full, closing connection")
			cm.removeConnection(conn)
		}
	}
}

// removeConnection unregisters and closes a connection.
func (cm *ConnectionManager) removeConnection(conn *Connection) {
	cm.mu.Lock()
	if conns, ok := cm.roomConnections[conn.RoomID]; ok {
		if _, registered := conns[conn]; registered {
			delete(conns, conn)
			close(conn.Send)
			if len(conns) == 0 {
				delete(cm.roomConnections, conn.RoomID)
			}
		}
	}
	cm.mu.Unlock()
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for roomID, conns := range cm.roomConnections {
		for conn := range conns {
			close(conn.Send)
			_ = conn.Conn.Close()
		}
		delete(cm.roomConnections, roomID)
	}
}

// ConnectionStats reports active connection counts.
func (cm *ConnectionManager) ConnectionStats() (totalConnections, activeRooms int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for _, conns := range cm.roomConnections {
		totalConnections += len(conns)
	}
	return totalConnections, len(cm.roomConnections)
}

// writePump pushes queued messages and pings to the client.
func (c *Connection) writePump() {
	pingTicker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		pingTicker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("write failed")
				return
			}
		case <-pingTicker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes client frames. Clients do not send commands over the
// socket (mutations go through the REST endpoints), so this only services
// pongs and detects disconnects.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.removeConnection(c)
		_ = c.Conn.Close()
		log.Info().
			Str("connection_id", c.ID).
			Str("room_id", c.RoomID.String()).
			Msg("websocket disconnected")
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		return c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
