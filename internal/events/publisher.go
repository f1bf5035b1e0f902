// Package events publishes bookkeeping events to an AMQP broker so
// external consumers (exports, alerting) can react without polling the
// database. Publishing is best-effort: the ledger never fails a
// committed transaction over a broker error.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher publishes events on a direct exchange with one durable
// queue bound under the queue's own name.
type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewAMQPPublisher(url, exchangeName, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := p.channel.QueueBind(p.queueName, p.queueName, p.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishExpenseRecorded implements services.Publisher.
func (p *AMQPPublisher) PublishExpenseRecorded(ctx context.Context, id int64, category string, amount decimal.Decimal) error {
	body, err := ExpenseRecorded{
		ID:        id,
		Category:  category,
		Amount:    amount.String(),
		Timestamp: time.Now(),
	}.toJSON()
	if err != nil {
		return fmt.Errorf("marshal expense event: %w", err)
	}

	if err := p.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published expense event", "id", id, "category", category)
	return nil
}

// PublishBudgetAlert implements services.Publisher.
func (p *AMQPPublisher) PublishBudgetAlert(ctx context.Context, category string, percentage int, notifType string) error {
	body, err := BudgetAlert{
		Category:   category,
		Percentage: percentage,
		Type:       notifType,
		Timestamp:  time.Now(),
	}.toJSON()
	if err != nil {
		return fmt.Errorf("marshal budget alert: %w", err)
	}

	if err := p.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published budget alert", "category", category, "percentage", percentage)
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.queueName, // routing key matches the queue binding
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
