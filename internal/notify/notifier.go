// Package notify publishes lending events to downstream consumers (SMS, WhatsApp,
// dashboards). Delivery to people is out of scope here.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

type EventType string

const (
	EventPaymentCollected EventType = "payment.collected"
	EventLoanPaid         EventType = "loan.paid"
	EventRouteClosed      EventType = "route.closed"
	EventLoanDelinquent   EventType = "loan.delinquent"
)

type Event struct {
	Type        EventType `json:"type"`
	OccurredAt  time.Time `json:"occurredAt"`
	LoanID      string    `json:"loanId,omitempty"`
	CollectorID string    `json:"collectorId,omitempty"`
	Payload     any       `json:"payload,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.WithFields(logrus.Fields{
		"event":        event.Type,
		"loan_id":      event.LoanID,
		"collector_id": event.CollectorID,
	}).Info("lending event")
	return nil
}

// RedisPublisher publishes events as JSON on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Notify(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
