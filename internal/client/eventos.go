package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/websocket"
	gws "github.com/gorilla/websocket"
)

// OuvirTabela conecta no WebSocket da API e chama fn a cada recarga da tabela
// de preços. Bloqueia até ctx ser cancelado ou a conexão cair.
func (c *Client) OuvirTabela(ctx context.Context, fn func(websocket.TabelaAtualizada)) error {
	conn, _, err := gws.DefaultDialer.DialContext(ctx, websocket.URL(c.baseURL), nil)
	if err != nil {
		return fmt.Errorf("conectar websocket: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("ler websocket: %w", err)
		}
		if msg.Type != websocket.TipoTabelaAtualizada {
			continue
		}

		var dados websocket.TabelaAtualizada
		if err := json.Unmarshal(msg.Data, &dados); err != nil {
			logger.Get(ctx).Warn().Err(err).Msg("Notificação de tabela inválida")
			continue
		}
		fn(dados)
	}
}
