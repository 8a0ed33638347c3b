// Package mqtt is the transport between the light and the broker.
//
// paho delivers messages on its own goroutines. Client only queues them; they are
// handed to the registered handler one at a time from ServiceOnce, on the
// caller's goroutine, so the handler never runs concurrently with itself.
package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultOperationTimeout  = 5 * time.Second
	defaultDisconnectQuiesce = 250 // milliseconds
)

// MessageHandler receives one inbound message.
type MessageHandler func(topic string, payload []byte)

type Client struct {
	options      *pahomqtt.ClientOptions
	qos          byte
	pollInterval time.Duration
	newClient    func(*pahomqtt.ClientOptions) pahomqtt.Client

	mutex  sync.Mutex
	client pahomqtt.Client

	inbox   chan pahomqtt.Message
	lost    chan struct{}
	handler MessageHandler

	log *log.Entry
}

// NewClient prepares a client for the broker described by options. No connection
// is made until Connect.
func NewClient(options *pahomqtt.ClientOptions, qos byte, inboxSize int, pollInterval time.Duration) *Client {
	if inboxSize < 1 {
		inboxSize = 1
	}

	c := &Client{
		options:      options,
		qos:          qos,
		pollInterval: pollInterval,
		newClient:    pahomqtt.NewClient,
		inbox:        make(chan pahomqtt.Message, inboxSize),
		lost:         make(chan struct{}, 1),
		log:          log.WithField("component", "mqtt"),
	}

	onLost := options.OnConnectionLost
	options.SetConnectionLostHandler(func(client pahomqtt.Client, err error) {
		if onLost != nil {
			onLost(client, err)
		}

		select {
		case c.lost <- struct{}{}:
		default:
		}
	})

	return c
}

// Connect opens a new session identified by clientID.
func (c *Client) Connect(clientID string) error {
	c.options.SetClientID(clientID)

	client := c.newClient(c.options)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.mutex.Lock()
	c.client = client
	c.mutex.Unlock()

	// A loss signalled for the previous session is stale now
	select {
	case <-c.lost:
	default:
	}

	return nil
}

func (c *Client) IsConnected() bool {
	client := c.current()

	return client != nil && client.IsConnected()
}

func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	client := c.current()
	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}

	token := client.Publish(topic, c.qos, retained, payload)
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultOperationTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

func (c *Client) Subscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	client := c.current()
	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}

	token := client.Subscribe(topic, c.qos, c.enqueue)
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOperationTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// SetMessageHandler sets the function ServiceOnce hands messages to.
func (c *Client) SetMessageHandler(handler MessageHandler) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.handler = handler
}

// ServiceOnce dispatches at most one queued message. When nothing arrives it
// returns after the poll interval, or as soon as the connection is lost.
func (c *Client) ServiceOnce(ctx context.Context) error {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	select {
	case msg := <-c.inbox:
		c.dispatch(msg)
	case <-c.lost:
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close disconnects from the broker if connected.
func (c *Client) Close() {
	if client := c.current(); client != nil && client.IsConnected() {
		client.Disconnect(defaultDisconnectQuiesce)
	}
}

func (c *Client) current() pahomqtt.Client {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.client
}

// enqueue runs on paho's goroutines.
func (c *Client) enqueue(_ pahomqtt.Client, msg pahomqtt.Message) {
	select {
	case c.inbox <- msg:
	default:
		c.log.Warnf("Inbox full, dropping message on %v", msg.Topic())
	}
}

func (c *Client) dispatch(msg pahomqtt.Message) {
	c.mutex.Lock()
	handler := c.handler
	c.mutex.Unlock()

	if handler == nil {
		c.log.Warnf("No handler, dropping message on %v", msg.Topic())
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Errorf("Panic handling message on %v: %v", msg.Topic(), r)
		}
	}()

	handler(msg.Topic(), msg.Payload())
}
