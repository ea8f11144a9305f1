package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// BookingEvent は予約の状態変化を下流に通知するペイロード
type BookingEvent struct {
	BookingID    int64   `json:"booking_id"`
	CustomerName string  `json:"customer_name"`
	MovieName    string  `json:"movie_name"`
	ShowTime     string  `json:"show_time"`
	SeatNumber   string  `json:"seat_number"`
	Price        float64 `json:"price,omitempty"`
	Status       string  `json:"status"`
	OccurredAt   string  `json:"occurred_at"`
}

// Publisher は予約イベント発行のインターフェース
// 発行失敗はリクエスト処理を妨げない（呼び出し側でログのみ）
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingEvent) error
	PublishBookingCancelled(ctx context.Context, event BookingEvent) error
	Close() error
}

// AMQPPublisher は RabbitMQ へ予約イベントを発行する
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher は接続を確立し、キューを宣言する
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}

	// durable なキューを宣言（冪等）
	for _, name := range []string{QueueBookingConfirmed, QueueBookingCancelled} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("キュー宣言に失敗しました: %w", err)
		}
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// PublishBookingConfirmed は予約確定イベントを発行する
func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, QueueBookingConfirmed, event)
}

// PublishBookingCancelled は予約キャンセルイベントを発行する
func (p *AMQPPublisher) PublishBookingCancelled(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, QueueBookingCancelled, event)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ Publisher = (*AMQPPublisher)(nil)
