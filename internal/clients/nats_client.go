package clients

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"scavnger-backend/internal/metrics"
)

// NATSClient publishes challenge lifecycle events. Event publication is
// optional: when NATS is not configured the backend runs without it.
type NATSClient struct {
	conn *nats.Conn
}

// NewNATSClient connects to the NATS server with reconnection enabled.
func NewNATSClient(url string, connectTimeout time.Duration) (*NATSClient, error) {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS connection lost: %v", err)
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected")
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	metrics.NATSConnectionStatus.Set(1)
	return &NATSClient{conn: conn}, nil
}

// Publish marshals payload as JSON and publishes it on subject.
func (c *NATSClient) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	metrics.NATSEventsPublished.WithLabelValues(subject).Inc()
	return nil
}

// Close drains and closes the connection.
func (c *NATSClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
