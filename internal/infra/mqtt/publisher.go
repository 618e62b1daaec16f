// Package mqtt publishes alert run summaries to an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"

	"insteon-alert/internal/domain"
)

type Config struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
	QoS       byte
	Timeout   time.Duration
}

// Publisher connects for every summary and disconnects afterwards; runs are
// short-lived and rare, so no session is kept open.
type Publisher struct {
	client  pahomqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

func NewPublisher(cfg Config) *Publisher {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(cfg.Timeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	return NewPublisherWithClient(pahomqtt.NewClient(opts), cfg.Topic, cfg.QoS, cfg.Timeout)
}

func NewPublisherWithClient(client pahomqtt.Client, topic string, qos byte, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: timeout,
	}
}

func (p *Publisher) Notify(ctx context.Context, summary domain.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	if err := p.wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer p.client.Disconnect(250)

	if err := p.wait(ctx, p.client.Publish(p.topic, p.qos, false, payload)); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}

	return nil
}

func (p *Publisher) wait(ctx context.Context, token pahomqtt.Token) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
