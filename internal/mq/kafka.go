package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        time.Second,
	})
}

// MessageWriter is the part of *kafka.Writer the publishers need.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func EncodeJSON(key string, payload any) (kafka.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
	}, nil
}

func PublishJSON(ctx context.Context, writer MessageWriter, key string, payload any) error {
	msg, err := EncodeJSON(key, payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, msg)
}

// PublishScores writes a snapshot's entries in one batch, keyed by pair so
// each pair stays on one partition.
func PublishScores(ctx context.Context, writer MessageWriter, snapshotID string, entries []contracts.CurrentScoreEntry) error {
	msgs := make([]kafka.Message, 0, len(entries))
	for _, e := range entries {
		msg, err := EncodeJSON(e.Key(), contracts.ScoreEvent{SnapshotID: snapshotID, Entry: e})
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	return writer.WriteMessages(ctx, msgs...)
}

func ParseMessageJSON[T any](msg kafka.Message) (T, error) {
	var payload T
	err := json.Unmarshal(msg.Value, &payload)
	return payload, err
}
