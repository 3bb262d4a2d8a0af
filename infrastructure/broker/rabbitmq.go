package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

// RabbitMQ publishes post lifecycle events to a durable direct exchange.
type RabbitMQ struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

func NewRabbitMQ(cfg Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if cfg.QueueName != "" {
		q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue: %w", err)
		}
		if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("bind queue: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"exchange":    cfg.Exchange,
		"queue":       cfg.QueueName,
		"routing_key": cfg.RoutingKey,
	}).Info("[BROKER] connected to rabbitmq")

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}, nil
}

// Message is the JSON body consumers receive.
type Message struct {
	Event          domain.EventType `json:"event"`
	PostID         string           `json:"post_id"`
	AutomationID   string           `json:"automation_id"`
	TenantID       string           `json:"tenant_id"`
	Status         string           `json:"status"`
	ErrorKind      string           `json:"error_kind,omitempty"`
	Error          string           `json:"error,omitempty"`
	PlatformPostID string           `json:"platform_post_id,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func encode(ev domain.PostEvent) ([]byte, error) {
	msg := Message{
		Event:          ev.Event,
		PostID:         ev.PostID,
		AutomationID:   ev.AutomationID,
		TenantID:       ev.TenantID,
		Status:         string(ev.Status),
		ErrorKind:      string(ev.ErrorKind),
		Error:          ev.Error,
		PlatformPostID: ev.PlatformPostID,
		OccurredAt:     ev.OccurredAt.UTC(),
	}
	return json.Marshal(msg)
}

func (r *RabbitMQ) PublishPostEvent(ctx context.Context, ev domain.PostEvent) error {
	body, err := encode(ev)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         string(ev.Event),
			MessageId:    ev.PostID + ":" + string(ev.Event),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"post_id": ev.PostID,
		"event":   ev.Event,
	}).Debug("[BROKER] published post event")

	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Noop drops every event. Used when the broker is disabled.
type Noop struct{}

func (Noop) PublishPostEvent(context.Context, domain.PostEvent) error { return nil }

func (Noop) Close() error { return nil }
