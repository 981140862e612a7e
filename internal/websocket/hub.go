package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Estimator calcula o resultado de uma sessão sem gerar planilha
type Estimator interface {
	Preview(ctx context.Context, req model.EstimateRequest) (*model.EstimateResponse, error)
}

// Hub mantém as sessões ativas. Cada conexão tem seu próprio estado.
type Hub struct {
	// Registered clients by session ID
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// done é fechado quando Run termina
	done chan struct{}

	mutex sync.RWMutex

	estimator      Estimator
	maxConnections int
	maxMessageSize int64

	logger *zerolog.Logger
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Tipos de mensagem
const (
	TypeConnection = "connection"
	TypeInput      = "input"
	TypeReset      = "reset"
	TypeResult     = "result"
	TypeError      = "error"
	TypePing       = "ping"
	TypePong       = "pong"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// StaleAfter é o tempo sem pong a partir do qual a sessão conta como parada
	StaleAfter = pongWait

	// Folga para o envelope JSON além do texto colado
	messageOverhead = 64 * 1024

	// DefaultMaxConnections limita sessões simultâneas
	DefaultMaxConnections = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new WebSocket hub. maxInputBytes limita o texto de
// cada mensagem recebida.
func NewHub(estimator Estimator, maxInputBytes int64) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		estimator:      estimator,
		maxConnections: DefaultMaxConnections,
		maxMessageSize: maxInputBytes + messageOverhead,
		logger:         logger.Global(),
	}
}

// Run processa registros até ctx ser cancelado; as conexões restantes são
// fechadas na saída
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client.SessionID] = client
	count := len(h.clients)
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("connections", count).
		Msg("Sessão websocket iniciada")

	client.SendMessage(Message{
		Type:      TypeConnection,
		Data:      map[string]string{"status": "connected", "session_id": client.SessionID},
		Timestamp: time.Now(),
	})
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if current, ok := h.clients[client.SessionID]; ok && current == client {
		delete(h.clients, client.SessionID)
		client.closeSend()

		metrics.Get().DecrementWSConnection()

		h.logger.Info().
			Str("session_id", client.SessionID).
			Dur("duration", time.Since(client.ConnectedAt)).
			Int("remaining_connections", len(h.clients)).
			Msg("Sessão websocket encerrada")
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, client := range h.clients {
		delete(h.clients, id)
		client.closeSend()
		metrics.Get().DecrementWSConnection()
	}
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// MaxConnections retorna o limite de sessões simultâneas
func (h *Hub) MaxConnections() int {
	return h.maxConnections
}

// StaleSessions conta as sessões sem ping ou pong há mais de maxIdle
func (h *Hub) StaleSessions(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stale := 0
	for _, client := range h.clients {
		if client.LastPing().Before(cutoff) {
			stale++
		}
	}
	return stale
}
