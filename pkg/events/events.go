package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationCancelled Type = "reservation.cancelled"
)

type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	MemberID      int64     `json:"member_id"`
	ReservationID int64     `json:"reservation_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func New(t Type, memberID, reservationID int64) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          t,
		MemberID:      memberID,
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
	}
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events keyed by member id, so events of one member keep their order.
type Producer struct {
	writer writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("can't encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.MemberID, 10)),
		Value: value,
		Time:  e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("can't publish %s event: %w", e.Type, err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
