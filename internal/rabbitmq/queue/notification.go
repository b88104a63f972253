package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

const (
	ExchangeName   = "notifications-exchange"
	MainQueueName  = "notifications-queue"
	RetryQueueName = "notifications-retry"
	DLQName        = "notifications-dlq"
	RoutingKey     = "notifications"
)

// Delivery is a single queued message handed to the worker. Exactly one of
// Ack, Reject or Discard must be called per delivery: Ack consumes the
// message, Reject parks it on the retry queue for redelivery after the retry
// TTL, Discard moves it to the DLQ.
type Delivery interface {
	Body() []byte
	Attempts() int // broker redelivery count, 0 on first delivery
	Ack() error
	Reject() error
	Discard() error
}

// NotificationQueue declares the notification topology on a channel and
// exposes the producer and consumer sides of it.
//
// Failed messages dead-letter from the main queue to the retry queue, sit
// there for the configured TTL, then dead-letter back to the main queue.
// The broker counts those round trips in the x-death header, which is where
// Attempts comes from.
type NotificationQueue struct {
	ch        *rabbitmq.Channel
	publisher *rabbitmq.Publisher
}

// NewNotificationQueue declares the exchange, main, retry and dead-letter
// queues and binds the main queue to the exchange.
func NewNotificationQueue(ch *rabbitmq.Channel, retryTTL time.Duration) (*NotificationQueue, error) {
	exchange := rabbitmq.NewExchange(ExchangeName, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	_, err := qm.DeclareQueue(DLQName, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	retryArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": MainQueueName,
		"x-message-ttl":             int32(retryTTL.Milliseconds()),
	}

	_, err = qm.DeclareQueue(RetryQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    retryArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare retry queue: %w", err)
	}

	mainArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": RetryQueueName,
	}

	mainQ, err := qm.DeclareQueue(MainQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    mainArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	pub := rabbitmq.NewPublisher(ch, exchange.Name())

	return &NotificationQueue{ch: ch, publisher: pub}, nil
}

// Publish serializes the request and submits it to the exchange. Exactly one
// message is enqueued per successful call.
func (q *NotificationQueue) Publish(req model.NotificationRequest, strategy retry.Strategy) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.publisher.PublishWithRetry(body, RoutingKey, "application/json", strategy)
}

// Consume opens a manual-ack consumer on the main queue and returns a
// channel of deliveries. The channel is closed when ctx is cancelled or the
// broker closes the consumer; unresolved deliveries are redelivered by the
// broker once the channel drops.
func (q *NotificationQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := q.ch.Consume(MainQueueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	out := make(chan Delivery)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					zlog.Logger.Warn().Msg("consumer channel closed by broker")
					return
				}

				select {
				case out <- &amqpDelivery{msg: m, ch: q.ch}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

type amqpDelivery struct {
	msg amqp.Delivery
	ch  *rabbitmq.Channel
}

func (d *amqpDelivery) Body() []byte { return d.msg.Body }

// Attempts counts prior dead-letter round trips from the x-death header.
func (d *amqpDelivery) Attempts() int {
	deaths, ok := d.msg.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}

	attempts := 0
	for _, death := range deaths {
		entry, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if entry["queue"] != RetryQueueName {
			continue
		}
		if count, ok := entry["count"].(int64); ok {
			attempts += int(count)
		}
	}

	return attempts
}

func (d *amqpDelivery) Ack() error {
	return d.msg.Ack(false)
}

// Reject nacks without requeue; the main queue's dead-letter args route the
// message to the retry queue.
func (d *amqpDelivery) Reject() error {
	return d.msg.Nack(false, false)
}

// Discard publishes the body to the DLQ and acknowledges the original, for
// messages whose redelivery budget is spent.
func (d *amqpDelivery) Discard() error {
	err := d.ch.PublishWithContext(context.Background(), "", DLQName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        d.msg.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	return d.msg.Ack(false)
}
