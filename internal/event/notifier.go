// Package event publishes exam lifecycle notifications. Delivery is
// fire-and-forget: publish failures are logged and swallowed, never surfaced
// to the operation that triggered them.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// Event types double as AMQP topic routing keys.
const (
	TypeExamStarted   = "exam.started"
	TypeExamExpired   = "exam.expired"
	TypeExamCompleted = "exam.completed"
)

// ReasonTimeLimitExceeded annotates an exam.expired event.
const ReasonTimeLimitExceeded = "TIME_LIMIT_EXCEEDED"

// ExamStarted is emitted when a session is created.
type ExamStarted struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Certification string    `json:"certification"`
	ExamType      string    `json:"exam_type"`
	StartTime     time.Time `json:"start_time"`
}

// ExamExpired is emitted when a stale session is auto-closed.
type ExamExpired struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
}

// ExamCompleted is emitted after a successful submission.
type ExamCompleted struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	ResultID      string    `json:"result_id"`
	Certification string    `json:"certification"`
	ExamType      string    `json:"exam_type"`
	ScaledScore   int       `json:"scaled_score"`
	Passed        bool      `json:"passed"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Notifier publishes events to an AMQP topic exchange and mirrors them onto
// a Redis PubSub channel consumed by the live monitor stream.
type Notifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewNotifier dials AMQP and declares the topic exchange.
func NewNotifier(amqpURL, exchange string, rdb *redis.Client, log zerolog.Logger) (*Notifier, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Notifier{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		rdb:      rdb,
		log:      log.With().Str("component", "notifier").Logger(),
	}, nil
}

// Publish emits one event. Errors never escape: a notification that cannot
// be delivered is logged at warn and dropped.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload any) {
	body, err := json.Marshal(map[string]any{
		"type":       eventType,
		"payload":    payload,
		"emitted_at": time.Now().UTC(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("type", eventType).Msg("Event marshal failed")
		return
	}

	if err := n.channel.Publish(
		n.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		n.log.Warn().Err(err).Str("type", eventType).Msg("Event publish failed")
	}

	// Mirror for the WebSocket monitor stream.
	if err := n.rdb.Publish(ctx, config.CacheKey.ExamEventsChannel(), body).Err(); err != nil {
		n.log.Warn().Err(err).Str("type", eventType).Msg("Event mirror failed")
	}
}

// Close releases the AMQP channel and connection.
func (n *Notifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}
