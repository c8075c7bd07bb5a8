package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"theatreops/internal/domain"
)

// KafkaFeed consumes change envelopes from one topic per collection
// (<prefix><entity>). Kafka's per-partition ordering supplies the per-stream
// delivery guarantee; the record store's change publisher keys every change
// by entity ID so one entity never spreads across partitions.
type KafkaFeed struct {
	brokers     []string
	topicPrefix string
	group       string
	logger      *slog.Logger
}

type KafkaFeedOption func(f *KafkaFeed)

func WithKafkaLogger(logger *slog.Logger) KafkaFeedOption {
	return func(f *KafkaFeed) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithConsumerGroup sets the consumer group; without one each engine instance
// sees the full stream.
func WithConsumerGroup(group string) KafkaFeedOption {
	return func(f *KafkaFeed) {
		f.group = group
	}
}

func NewKafkaFeed(brokers []string, topicPrefix string, opts ...KafkaFeedOption) *KafkaFeed {
	f := &KafkaFeed{
		brokers:     brokers,
		topicPrefix: topicPrefix,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Subscribe opens a dedicated consumer for the entity's topic. The returned
// channel closes when the context is cancelled or the consumer fails; the
// caller decides whether a failed stream is restarted.
func (f *KafkaFeed) Subscribe(ctx context.Context, entity domain.EntityType) (<-chan Change, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(f.brokers...),
		kgo.ConsumeTopics(f.topicPrefix + string(entity)),
	}
	if f.group != "" {
		opts = append(opts, kgo.ConsumerGroup(f.group+"."+string(entity)))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client for %s: %w", entity, err)
	}

	ch := make(chan Change, 64)
	go f.consume(ctx, client, entity, ch)
	return ch, nil
}

func (f *KafkaFeed) consume(ctx context.Context, client *kgo.Client, entity domain.EntityType, ch chan<- Change) {
	defer close(ch)
	defer client.Close()

	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			// A fetch error ends this one stream; the controller surfaces it
			// and other streams keep running.
			for _, fe := range errs {
				f.logger.Error("change feed fetch failed",
					"entity", string(entity),
					"topic", fe.Topic,
					"error", fe.Err,
				)
			}
			return
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			rec := iter.Next()

			var change Change
			if err := json.Unmarshal(rec.Value, &change); err != nil {
				// One malformed envelope must not take the stream down.
				f.logger.Warn("skipping malformed change envelope",
					"entity", string(entity),
					"offset", rec.Offset,
					"error", err,
				)
				continue
			}
			if change.Entity == "" {
				change.Entity = entity
			}

			select {
			case ch <- change:
			case <-ctx.Done():
				return
			}
		}
	}
}
