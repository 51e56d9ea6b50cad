package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Tipos de mensagem enviados aos formulários
const (
	TipoConexao          = "connection"
	TipoTabelaAtualizada = "tabela_atualizada"
	TipoPong             = "pong"
)

// Hub mantém os formulários conectados e distribui avisos de atualização da tabela
type Hub struct {
	clients map[*Client]bool

	// Mensagens para todos os clientes
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mutex  sync.RWMutex
	logger *zerolog.Logger
}

// Message é o envelope das mensagens WebSocket
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// TabelaAtualizada acompanha a mensagem tabela_atualizada
type TabelaAtualizada struct {
	Versao int64 `json:"versao"`
	Linhas int   `json:"linhas"`
}

const (
	// Tempo para escrever uma mensagem
	writeWait = 10 * time.Second

	// Tempo para receber o próximo pong
	pongWait = 60 * time.Second

	// Deve ser menor que pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	broadcastBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Formulários podem ser servidos de outro domínio
		return true
	},
}

// NewHub cria um novo hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Global(),
	}
}

// Run executa o laço principal do hub até Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop encerra o hub e fecha as conexões
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("client_id", client.ID).
		Str("client_ip", client.ClientIP).
		Int("connections", total).
		Msg("WebSocket client registered")

	client.SendMessage(Message{
		Type:      TipoConexao,
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
		metrics.Get().DecrementWSConnection()

		h.logger.Info().
			Str("client_id", client.ID).
			Int("remaining_connections", len(h.clients)).
			Msg("WebSocket client unregistered")
	}
}

// broadcastMessage envia a mensagem a todos; clientes lentos são desconectados
func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("client_id", client.ID).
				Msg("Failed to send message to client, closing connection")
			client.closeSend()
			delete(h.clients, client)
			metrics.Get().DecrementWSConnection()
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
		metrics.Get().DecrementWSConnection()
	}
}

// Broadcast enfileira uma mensagem para todos os clientes
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn().Msg("Broadcast queue full, message dropped")
	}
}

// NotificarTabela avisa os formulários que uma nova tabela de preços entrou em vigor
func (h *Hub) NotificarTabela(versao int64, linhas int) {
	h.Broadcast(Message{
		Type:      TipoTabelaAtualizada,
		Data:      TabelaAtualizada{Versao: versao, Linhas: linhas},
		Timestamp: time.Now(),
	})
}

// GetConnectionCount retorna o número de conexões ativas
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
