package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultExchange topic-обменник событий брони
const DefaultExchange = "gym.reservations"

const (
	DefaultBufferSize  = 256
	DefaultDialTimeout = 3 * time.Second

	publishTimeout = 5 * time.Second
	closeTimeout   = 10 * time.Second
	reconnectDelay = 5 * time.Second
)

var (
	ErrBufferFull      = errors.New("event buffer is full")
	ErrPublisherClosed = errors.New("publisher is closed")
)

// Publisher публикует события в RabbitMQ из фоновой горутины.
// Publish только кладёт событие в буфер и не ждёт брокер. Соединение
// открывается лениво и переоткрывается после обрыва, но не чаще reconnectDelay.
type Publisher struct {
	url         string
	exchange    string
	dialTimeout time.Duration
	logger      *zap.Logger

	events  chan ReservationEvent
	done    chan struct{}
	started bool

	closeMu sync.RWMutex
	closed  bool

	// Поля ниже трогает только воркер
	dial    func(url string) (*amqp.Connection, error)
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// NewPublisher создаёт издателя и запускает воркер отправки
func NewPublisher(url, exchange string, logger *zap.Logger) *Publisher {
	p := newPublisher(url, exchange, DefaultBufferSize, DefaultDialTimeout, logger)
	p.start()
	return p
}

func newPublisher(url, exchange string, buffer int, dialTimeout time.Duration, logger *zap.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}

	p := &Publisher{
		url:         url,
		exchange:    exchange,
		dialTimeout: dialTimeout,
		logger:      logger,
		events:      make(chan ReservationEvent, buffer),
		done:        make(chan struct{}),
	}
	p.dial = p.dialBroker
	return p
}

func (p *Publisher) start() {
	p.started = true
	go p.run()
}

func (p *Publisher) dialBroker(url string) (*amqp.Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName("gym-scheduler")

	return amqp.DialConfig(url, amqp.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: props,
		Dial:       amqp.DefaultDial(p.dialTimeout),
	})
}

// Publish ставит событие в очередь отправки. Не блокируется:
// при переполненном буфере событие отбрасывается с ErrBufferFull.
func (p *Publisher) Publish(_ context.Context, event ReservationEvent) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.events <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

func (p *Publisher) run() {
	defer close(p.done)

	for event := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.send(ctx, event); err != nil {
			p.logger.Warn("Failed to deliver reservation event",
				zap.String("type", string(event.Type)),
				zap.String("reservation_id", event.ReservationID),
				zap.Error(err),
			)
		}
		cancel()
	}

	p.reset()
}

// channel возвращает живой канал, при необходимости переподключаясь
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	if p.conn == nil || p.conn.IsClosed() {
		if time.Now().Before(p.retryAt) {
			return nil, errors.New("rabbitmq unavailable, waiting to reconnect")
		}

		conn, err := p.dial(p.url)
		if err != nil {
			p.retryAt = time.Now().Add(reconnectDelay)
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		p.conn = conn
		p.retryAt = time.Time{}
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Durable, чтобы обменник переживал рестарт брокера
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.ch = ch
	return ch, nil
}

// send отправляет событие с routing key = тип события
func (p *Publisher) send(ctx context.Context, event ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.ReservationID + ":" + string(event.Type),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		pub,
	); err != nil {
		// Канал мог умереть вместе с соединением, переоткроем на следующем событии
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Reservation event published",
		zap.String("type", string(event.Type)),
		zap.String("reservation_id", event.ReservationID),
	)
	return nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Warn("Failed to close rabbitmq connection", zap.Error(err))
		}
		p.conn = nil
	}
}

// Close перестаёт принимать события, дожидается отправки буфера
// (не дольше closeTimeout) и закрывает соединение
func (p *Publisher) Close() error {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.closeMu.Unlock()

	if !p.started {
		return nil
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(closeTimeout):
		return fmt.Errorf("publisher: %d events left undelivered", len(p.events))
	}
}

// NopPublisher ничего не отправляет; используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
