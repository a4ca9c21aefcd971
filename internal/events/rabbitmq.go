package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"

	"github.com/rabbitmq/amqp091-go"
)

var ErrNotConnected = errors.New("not connected to RabbitMQ")

const (
	defaultMinBackoff = 1 * time.Second
	defaultMaxBackoff = 30 * time.Second
)

// RabbitMQClient keeps one connection and channel open and rebuilds them
// when the broker goes away. Publishes fail fast while it is reconnecting.
type RabbitMQClient struct {
	mu            sync.RWMutex
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	connectionURI string
	exchangeName  string
	isConnected   bool

	minBackoff time.Duration
	maxBackoff time.Duration

	closed    chan struct{}
	closeOnce sync.Once
}

func newRabbitMQClient(connectionURI, exchangeName string) *RabbitMQClient {
	return &RabbitMQClient{
		connectionURI: connectionURI,
		exchangeName:  exchangeName,
		minBackoff:    defaultMinBackoff,
		maxBackoff:    defaultMaxBackoff,
		closed:        make(chan struct{}),
	}
}

func NewRabbitMQClient(connectionURI, exchangeName string) (*RabbitMQClient, error) {
	client := newRabbitMQClient(connectionURI, exchangeName)
	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *RabbitMQClient) connect() error {
	conn, err := amqp091.Dial(c.connectionURI)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := c.openChannel(conn)
	if err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	if c.isClosed() {
		c.mu.Unlock()
		channel.Close()
		conn.Close()
		return errors.New("RabbitMQ client is closed")
	}
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	c.setConnected(true)

	go c.monitorConnection(conn, channel)
	return nil
}

func (c *RabbitMQClient) openChannel(conn *amqp091.Connection) (*amqp091.Channel, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return channel, nil
}

func (c *RabbitMQClient) monitorConnection(conn *amqp091.Connection, channel *amqp091.Channel) {
	connCloseChan := conn.NotifyClose(make(chan *amqp091.Error, 1))
	chanCloseChan := channel.NotifyClose(make(chan *amqp091.Error, 1))

	select {
	case <-c.closed:
		return
	case err := <-connCloseChan:
		if c.isClosed() {
			return
		}
		c.setConnected(false)
		log.Printf("RabbitMQ connection closed: %v, attempting to reconnect...", err)
		c.reconnect()
	case err := <-chanCloseChan:
		if c.isClosed() {
			return
		}
		if conn.IsClosed() {
			c.setConnected(false)
			log.Printf("RabbitMQ connection closed: %v, attempting to reconnect...", err)
			c.reconnect()
			return
		}
		log.Printf("RabbitMQ channel closed: %v, reopening...", err)
		c.reopenChannel(conn)
	}
}

func (c *RabbitMQClient) reopenChannel(conn *amqp091.Connection) {
	c.setConnected(false)

	channel, err := c.openChannel(conn)
	if err != nil {
		log.Printf("Failed to reopen channel: %v", err)
		conn.Close()
		c.reconnect()
		return
	}

	c.mu.Lock()
	c.channel = channel
	c.mu.Unlock()
	c.setConnected(true)
	log.Println("Successfully reopened RabbitMQ channel")

	go c.monitorConnection(conn, channel)
}

// reconnect retries with capped exponential backoff until it succeeds or the client is closed.
func (c *RabbitMQClient) reconnect() {
	backoff := c.minBackoff

	for {
		select {
		case <-c.closed:
			return
		case <-time.After(backoff):
		}

		err := c.connect()
		if err == nil {
			log.Println("Successfully reconnected to RabbitMQ")
			return
		}

		log.Printf("Failed to reconnect to RabbitMQ: %v", err)
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func (c *RabbitMQClient) setConnected(connected bool) {
	c.mu.Lock()
	c.isConnected = connected
	c.mu.Unlock()

	if connected {
		metrics.EventBrokerConnected.Set(1)
	} else {
		metrics.EventBrokerConnected.Set(0)
	}
}

func (c *RabbitMQClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *RabbitMQClient) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *RabbitMQClient) Publish(ctx context.Context, routingKey string, body []byte) error {
	c.mu.RLock()
	connected, channel := c.isConnected, c.channel
	c.mu.RUnlock()
	if !connected || channel == nil {
		return fmt.Errorf("cannot publish %s: %w", routingKey, ErrNotConnected)
	}

	err := channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close stops any reconnect loop, then closes the channel and connection.
func (c *RabbitMQClient) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	c.setConnected(false)

	c.mu.Lock()
	channel, conn := c.channel, c.conn
	c.channel, c.conn = nil, nil
	c.mu.Unlock()

	if channel != nil {
		if err := channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if conn != nil && !conn.IsClosed() {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
