package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/cinema-pulse/internal/logging"
	"github.com/Clark-Hu/cinema-pulse/internal/metrics"
)

// Topic carries every event.
const Topic = "cinemapulse.events"

const outputBuffer = 256

// Bus is an in-process publish/subscribe channel between the persistence
// facade and a delivery sink.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewBus creates a bus. Events published while no subscriber runs are
// dropped.
func NewBus(logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "notify").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: outputBuffer,
	}, logging.NewWatermillLogger(logger))
	return &Bus{pubsub: pubsub, logger: logger}
}

// Notify publishes event. Encoding or publish failures are logged and
// swallowed.
func (b *Bus) Notify(_ context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error().Err(err).Str("type", string(event.Type)).Msg("encode event")
		metrics.NotificationsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return
	}

	msg := message.NewMessage(event.ID, payload)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		b.logger.Warn().Err(err).Str("type", string(event.Type)).Msg("publish event")
		metrics.NotificationsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return
	}
	metrics.NotificationsPublished.WithLabelValues(string(event.Type), "ok").Inc()
}

// Start subscribes sink to the bus and delivers events in the background
// until ctx is cancelled or the bus is closed. Every message is
// acknowledged; failed deliveries are logged and counted, not retried.
func (b *Bus) Start(ctx context.Context, sink Sink) error {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", Topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.deliver(ctx, sink, msg)
				msg.Ack()
			}
		}
	}()
	return nil
}

func (b *Bus) deliver(ctx context.Context, sink Sink, msg *message.Message) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		b.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("decode event")
		metrics.NotificationDeliveries.WithLabelValues(sink.Name(), "invalid").Inc()
		return
	}

	if err := sink.Deliver(ctx, event); err != nil {
		b.logger.Warn().Err(err).
			Str("sink", sink.Name()).
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Msg("deliver event")
		metrics.NotificationDeliveries.WithLabelValues(sink.Name(), "error").Inc()
		return
	}
	metrics.NotificationDeliveries.WithLabelValues(sink.Name(), "ok").Inc()
}

// Close shuts the bus down and waits for running deliveries to finish.
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// LogSink writes events to the log. It is used when no webhook is
// configured.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "notify").Logger()}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, event Event) error {
	s.logger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Int64("movie_id", event.MovieID).
		Str("user_email", event.UserEmail).
		Int("rating", event.Rating).
		Msg("event")
	return nil
}
