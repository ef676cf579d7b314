// Package amqp publica los eventos de cambio de stock en RabbitMQ después del commit.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/custodia-api/internal/application/inventory"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// DefaultQueue cola durable donde se publican los StockChanged.
const DefaultQueue = "inventario.stock_changed"

// Publisher mantiene una conexión y un canal; si se caen, se reabren en la siguiente publicación.
type Publisher struct {
	url   string
	queue string
	log   *logger.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher conecta y declara la cola. Un error aquí deja al servicio sin eventos, no sin stock.
func NewPublisher(url, queue string, log *logger.Logger) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Publisher{url: url, queue: queue, log: log}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("amqp queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// PublishStockChanged publica el evento como JSON persistente en la cola.
func (p *Publisher) PublishStockChanged(ctx context.Context, ev inventory.StockChanged) error {
	msg, err := NewStockChangedMessage(ev, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return err
		}
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// NewStockChangedMessage arma el mensaje AMQP del evento.
func NewStockChangedMessage(ev inventory.StockChanged, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal stock event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.MovementID,
		Type:         "stock.changed",
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !p.ch.IsClosed() {
			p.log.Debug().Err(err).Msg("amqp: cerrar canal")
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !p.conn.IsClosed() {
			p.log.Debug().Err(err).Msg("amqp: cerrar conexión")
		}
		p.conn = nil
	}
}
