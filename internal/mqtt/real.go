package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/logic"
)

// DefaultQueueSize bounds the offline queue. At one record per 30s this
// covers several sleep cycles.
const DefaultQueueSize = 256

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are queued and replayed on reconnect.
type RealPublisher struct {
	client  paho.Client
	session string

	mu    sync.Mutex
	queue *offlineQueue
}

// NewRealPublisher creates a publisher and starts connecting in the
// background. The controller runs headless, so a broker that is not
// reachable yet is not an error.
func NewRealPublisher(broker, clientID, session string) *RealPublisher {
	p := &RealPublisher{
		session: session,
		queue:   newOfflineQueue(DefaultQueueSize),
	}

	will := WillPayload(session)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt: connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.WithField("broker", broker).Warn("mqtt: broker not reachable yet, retrying in background")
	} else if err := token.Error(); err != nil {
		log.WithError(err).Warn("mqtt: connect to broker")
	}
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	pending := p.queue.drain()
	p.mu.Unlock()

	log.WithField("queued", len(pending)).Info("mqtt: connected")
	for _, m := range pending {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			p.enqueue(m)
		}
	}
}

func (p *RealPublisher) enqueue(m queuedMsg) {
	p.mu.Lock()
	p.queue.push(m)
	p.mu.Unlock()
}

func (p *RealPublisher) send(m queuedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.enqueue(m)
		return nil
	}
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.enqueue(m)
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.enqueue(m)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a telemetry record. QoS 0, not retained.
func (p *RealPublisher) Publish(rec logic.Record, mode logic.Mode) error {
	payload, err := FormatPayload(rec, mode, p.session)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(queuedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a lifecycle event. QoS 1 so mode changes are delivered.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	if event.Session == "" {
		event.Session = p.session
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(queuedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
