package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// drainWelcomeMessage descarta a mensagem de boas-vindas enviada no registro
func drainWelcomeMessage(client *Client) {
	select {
	case <-client.Send:
	case <-time.After(100 * time.Millisecond):
	}
}

func receber(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data, ok := <-client.Send:
		if !ok {
			t.Fatal("canal fechado")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("mensagem inválida: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("nenhuma mensagem recebida")
	}
	return Message{}
}

func TestRegistroEBoasVindas(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, "127.0.0.1")
	hub.registerClient(client)

	if msg := receber(t, client); msg.Type != TipoConexao {
		t.Errorf("tipo = %q", msg.Type)
	}
	if hub.GetConnectionCount() != 1 {
		t.Errorf("conexões = %d", hub.GetConnectionCount())
	}

	hub.unregisterClient(client)
	if _, ok := <-client.Send; ok {
		t.Error("canal deveria estar fechado")
	}
	if hub.GetConnectionCount() != 0 {
		t.Errorf("conexões = %d", hub.GetConnectionCount())
	}
	// remover duas vezes não causa pânico
	hub.unregisterClient(client)
}

func TestNotificarTabela(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a, b := NewClient(hub, "10.0.0.1"), NewClient(hub, "10.0.0.2")
	hub.register <- a
	hub.register <- b
	drainWelcomeMessage(a)
	drainWelcomeMessage(b)

	hub.NotificarTabela(3, 120)

	for _, c := range []*Client{a, b} {
		msg := receber(t, c)
		if msg.Type != TipoTabelaAtualizada {
			t.Fatalf("tipo = %q", msg.Type)
		}
		dados, _ := msg.Data.(map[string]interface{})
		if dados["versao"] != float64(3) || dados["linhas"] != float64(120) {
			t.Errorf("dados = %v", msg.Data)
		}
	}
}

func TestClienteLentoDesconectado(t *testing.T) {
	hub := NewHub()
	lento := &Client{Send: make(chan []byte), ID: "lento", Hub: hub}
	hub.mutex.Lock()
	hub.clients[lento] = true
	hub.mutex.Unlock()

	hub.broadcastMessage([]byte(`{"type":"tabela_atualizada"}`))

	if hub.GetConnectionCount() != 0 {
		t.Error("cliente lento deveria ter sido removido")
	}
}

// Para qualquer número de formulários conectados, todos recebem o aviso de atualização
func TestBroadcastAlcancaTodos(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("todos os clientes recebem tabela_atualizada", prop.ForAll(
		func(n int, versao int64) bool {
			hub := NewHub()
			clients := make([]*Client, n)
			for i := range clients {
				clients[i] = NewClient(hub, "127.0.0.1")
				hub.registerClient(clients[i])
				drainWelcomeMessage(clients[i])
			}

			hub.NotificarTabela(versao, 10)
			hub.broadcastMessage(<-hub.broadcast)

			for _, c := range clients {
				var msg Message
				if err := json.Unmarshal(<-c.Send, &msg); err != nil || msg.Type != TipoTabelaAtualizada {
					return false
				}
			}
			return hub.GetConnectionCount() == n
		},
		gen.IntRange(1, 20),
		gen.Int64Range(1, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestServeWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	router := gin.New()
	router.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(URL(srv.URL), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != TipoConexao {
		t.Fatalf("boas-vindas = %+v, %v", msg, err)
	}

	hub.NotificarTabela(7, 42)
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != TipoTabelaAtualizada {
		t.Fatalf("aviso = %+v, %v", msg, err)
	}

	if err := conn.WriteJSON(Message{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != TipoPong {
		t.Fatalf("pong = %+v, %v", msg, err)
	}
}

func TestURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080":       "ws://localhost:8080/ws",
		"https://api.exemplo.com.br/": "wss://api.exemplo.com.br/ws",
	}
	for in, want := range tests {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, esperado %q", in, got, want)
		}
	}
	if !strings.HasPrefix(URL("http://h/base"), "ws://h/base/ws") {
		t.Error("caminho base não preservado")
	}
}
