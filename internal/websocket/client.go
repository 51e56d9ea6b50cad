package websocket

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client liga uma conexão WebSocket ao hub
type Client struct {
	conn *websocket.Conn

	// Mensagens de saída
	Send      chan []byte
	closeOnce sync.Once

	ID       string
	ClientIP string
	Hub      *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// NewClient cria um cliente sem conexão, usado pelo hub e pelos testes
func NewClient(hub *Hub, clientIP string) *Client {
	return &Client{
		Send:        make(chan []byte, 256),
		ID:          uuid.NewString(),
		ClientIP:    clientIP,
		Hub:         hub,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
}

// ServeWS atende o upgrade WebSocket. A conexão é anônima: só recebe avisos.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("client_ip", c.ClientIP()).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(h, c.ClientIP())
	client.conn = conn

	logger.AuditWebSocket(c.Request.Context(), logger.AuditActionWSConnect, client.ClientIP,
		map[string]interface{}{"client_id": client.ID})

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump lê as mensagens do cliente; roda numa goroutine por conexão
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.conn.Close()
		logger.AuditWebSocket(context.Background(), logger.AuditActionWSDisconnect, c.ClientIP,
			map[string]interface{}{"client_id": c.ID})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("client_id", c.ID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump escreve as mensagens do hub; roda numa goroutine por conexão
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

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Debug().
			Err(err).
			Str("client_id", c.ID).
			Msg("Failed to unmarshal client message")
		return
	}

	switch msg.Type {
	case "ping":
		c.SendMessage(Message{Type: TipoPong, Timestamp: time.Now()})
	default:
		c.Hub.logger.Debug().
			Str("client_id", c.ID).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
	}
}

// SendMessage envia uma mensagem apenas a este cliente
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("client_id", c.ID).
			Msg("Failed to marshal message for client")
		return
	}

	defer func() {
		// canal já fechado pelo hub
		recover()
	}()
	select {
	case c.Send <- data:
	default:
		c.Hub.logger.Warn().
			Str("client_id", c.ID).
			Msg("Client send channel is full")
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// URL converte o endereço base da API no endereço do WebSocket
func URL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
