package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cleberrangel/calculadora-tempos/internal/logger"
	"github.com/cleberrangel/calculadora-tempos/internal/metrics"
	"github.com/cleberrangel/calculadora-tempos/internal/model"
	"github.com/cleberrangel/calculadora-tempos/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	SessionID string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time

	// lastPing guarda o último pong (UnixNano); lido pelo health check
	lastPing atomic.Int64

	ctx context.Context

	// state acumula as mensagens "input"; só a goroutine de leitura o acessa
	state model.EstimateRequest

	sendMu sync.Mutex
	closed bool
}

// inbound é a mensagem recebida do navegador
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewClient cria um cliente sem conexão associada
func NewClient(hub *Hub, sessionID string) *Client {
	now := time.Now()
	c := &Client{
		Send:        make(chan []byte, 32),
		SessionID:   sessionID,
		Hub:         hub,
		ConnectedAt: now,
		ctx:         logger.WithSessionID(context.Background(), sessionID),
	}
	c.touch(now)
	return c
}

func (c *Client) touch(t time.Time) {
	c.lastPing.Store(t.UnixNano())
}

// LastPing retorna o momento do último sinal de vida do navegador
func (c *Client) LastPing() time.Time {
	return time.Unix(0, c.lastPing.Load())
}

// ServeWS faz o upgrade da conexão e inicia uma sessão de cálculo ao vivo
// @Summary      Sessão de cálculo ao vivo
// @Description  Recebe {"type":"input","data":{...}} e responde com {"type":"result"} ou {"type":"error"}
// @Tags         estimates
// @Security     BearerAuth
// @Router       /api/v1/ws [get]
func (h *Hub) ServeWS(c *gin.Context) {
	if h.GetConnectionCount() >= h.maxConnections {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "limite de sessões simultâneas atingido",
			Details: "tente novamente em instantes",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Falha no upgrade da conexão websocket")
		return
	}

	client := NewClient(h, uuid.New().String())
	client.conn = conn
	requestCtx := logger.WithRequestID(context.Background(), logger.GetRequestID(c.Request.Context()))
	client.ctx = logger.WithSessionID(requestCtx, client.SessionID)

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.Hub.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.touch(time.Now())
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Get(c.ctx).Warn().Err(err).Msg("Conexão websocket encerrada inesperadamente")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Uma mensagem JSON por frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(data []byte) {
	metrics.Get().IncrementWSMessageIn()
	log := logger.Get(c.ctx)

	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Debug().Err(err).Msg("Mensagem websocket inválida")
		c.sendError(model.ErrorResponse{Error: "mensagem inválida", Details: err.Error()})
		return
	}

	switch msg.Type {
	case TypePing:
		c.touch(time.Now())
		c.SendMessage(Message{Type: TypePong, Timestamp: time.Now()})

	case TypeInput:
		var update model.EstimateRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &update); err != nil {
				c.sendError(model.ErrorResponse{Error: "dados inválidos", Details: err.Error()})
				return
			}
		}
		c.state = c.state.Merge(update)
		c.recompute()

	case TypeReset:
		c.state = model.EstimateRequest{}
		c.recompute()

	default:
		log.Debug().Str("message_type", msg.Type).Msg("Tipo de mensagem desconhecido")
		c.sendError(model.ErrorResponse{Error: "tipo de mensagem desconhecido", Details: msg.Type})
	}
}

// recompute calcula o estado atual e envia o resultado
func (c *Client) recompute() {
	resp, err := c.Hub.estimator.Preview(c.ctx, c.state)
	if err != nil {
		_, body := service.DescribeError(err)
		c.sendError(body)
		return
	}
	c.SendMessage(Message{Type: TypeResult, Data: resp, Timestamp: time.Now()})
}

func (c *Client) sendError(body model.ErrorResponse) {
	c.SendMessage(Message{Type: TypeError, Data: body, Timestamp: time.Now()})
}

// SendMessage sends a message to this specific client
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Get(c.ctx).Error().Err(err).Msg("Falha ao serializar mensagem websocket")
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.Send <- data:
		metrics.Get().IncrementWSMessageOut()
	default:
		logger.Get(c.ctx).Warn().Msg("Fila de envio cheia, mensagem descartada")
	}
}

// closeSend fecha o canal de envio uma única vez
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
