package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DefaultWriteTimeout bounds one Kafka write, retries included.
const DefaultWriteTimeout = 5 * time.Second

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// KafkaPublisher writes events to a Kafka topic as JSON. Messages are keyed
// by match ID, and the hash balancer keeps each match on one partition so
// consumers see its events in order.
//
// Publish only queues the event. A single background goroutine drains the
// queue in order, giving every write its own timeout, so a slow or absent
// broker never holds up the caller. Write failures are logged and dropped.
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	logger  *slog.Logger

	queue *eventQueue
	done  chan struct{}
}

// KafkaOption configures a KafkaPublisher.
type KafkaOption func(*KafkaPublisher)

// WithWriteTimeout bounds each write. Non-positive values are ignored.
func WithWriteTimeout(d time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithKafkaLogger sets the logger for write failures.
func WithKafkaLogger(l *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = l
	}
}

// NewKafkaPublisher creates a publisher for the given brokers.
func NewKafkaPublisher(brokers []string, topic string, opts ...KafkaOption) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
	}
	p := newKafkaPublisher(w, topic, opts)
	w.WriteTimeout = p.timeout
	go p.drain()
	return p
}

// NewKafkaPublisherWithWriter wraps an existing writer. Used in tests.
func NewKafkaPublisherWithWriter(w MessageWriter, topic string, opts ...KafkaOption) *KafkaPublisher {
	p := newKafkaPublisher(w, topic, opts)
	go p.drain()
	return p
}

func newKafkaPublisher(w MessageWriter, topic string, opts []KafkaOption) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:  w,
		topic:   topic,
		timeout: DefaultWriteTimeout,
		logger:  slog.Default(),
		queue:   newEventQueue(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish implements Publisher. It queues ev and returns at once; ctx is not
// used because the write outlives the caller's request.
func (p *KafkaPublisher) Publish(_ context.Context, ev Event) error {
	if !p.queue.Enqueue(ev) {
		return ErrPublisherClosed
	}
	return nil
}

// Pending returns the number of events not yet handed to the writer.
func (p *KafkaPublisher) Pending() int {
	return p.queue.Len()
}

// Close stops accepting events, waits for the queued ones to be written (each
// still bounded by the write timeout) and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.queue.Close()
	<-p.done
	return p.writer.Close()
}

func (p *KafkaPublisher) drain() {
	defer close(p.done)
	for {
		if ev, ok := p.queue.TryDequeue(); ok {
			if err := p.write(ev); err != nil {
				p.logger.Warn("kafka publish failed",
					"type", ev.Type,
					"match", ev.MatchID,
					"seq", ev.Seq,
					"error", err)
			}
			continue
		}
		if _, open := <-p.queue.Wait(); !open {
			return
		}
	}
}

func (p *KafkaPublisher) write(ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka publish: marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.MatchID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s to %s: %w", ev.Type, p.topic, err)
	}
	return nil
}

// Tail reads events from a Kafka topic and calls fn for each, until ctx ends.
// Undecodable messages are logged and skipped.
func Tail(ctx context.Context, brokers []string, topic, groupID string, fn func(Event) error) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka tail: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			slog.Warn("feed: skipping undecodable message", "topic", topic, "offset", msg.Offset, "error", err)
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
