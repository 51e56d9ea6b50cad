// Package broker publica os eventos de orçamento gerado no RabbitMQ para
// consumo pelo envio de e-mails e demais integrações.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cleberrangel/orcamento-sst-api/internal/logger"
	"github.com/cleberrangel/orcamento-sst-api/internal/model"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TimeoutPublicacao limita a espera do broker quando o contexto não tem prazo
const TimeoutPublicacao = 5 * time.Second

// Publisher publica eventos JSON em uma fila durável
type Publisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewPublisher conecta no broker e declara a fila
func NewPublisher(uri, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar no RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("erro ao abrir canal: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("erro ao declarar fila %s: %w", queue, err)
	}

	logger.Global().Info().Str("queue", queue).Msg("Publisher RabbitMQ conectado")
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publicar envia o evento como mensagem persistente
func (p *Publisher) Publicar(ctx context.Context, evento model.EventoOrcamento) error {
	body, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("erro ao serializar evento: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, TimeoutPublicacao)
		defer cancel()
	}

	// amqp.Channel não é seguro para publicações concorrentes
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		ctx,
		"",      // exchange padrão
		p.queue, // routing key = nome da fila
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         evento.Tipo,
			MessageId:    evento.NumeroOrcamento,
			Body:         body,
			Headers: amqp.Table{
				"request_id":   logger.GetRequestID(ctx),
				"enviar_email": evento.EnviarEmail,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("erro ao publicar evento %s: %w", evento.NumeroOrcamento, err)
	}

	logger.Get(ctx).Debug().
		Str("queue", p.queue).
		Str("numero_orcamento", evento.NumeroOrcamento).
		Msg("Evento publicado")
	return nil
}

// Close fecha canal e conexão
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errCh, errConn error
	if p.ch != nil {
		errCh = p.ch.Close()
	}
	if p.conn != nil {
		errConn = p.conn.Close()
	}
	return errors.Join(errCh, errConn)
}

// NoopPublisher descarta os eventos quando o broker não está configurado
type NoopPublisher struct{}

// Publicar apenas registra o evento em debug
func (NoopPublisher) Publicar(ctx context.Context, evento model.EventoOrcamento) error {
	logger.Get(ctx).Debug().
		Str("numero_orcamento", evento.NumeroOrcamento).
		Msg("Broker desabilitado, evento descartado")
	return nil
}

// Close não faz nada
func (NoopPublisher) Close() error { return nil }
