package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/pkg/messaging"
	"github.com/waitingboard/api/pkg/metrics"
)

const publishTimeout = 2 * time.Second

// EventService fans wait-time changes out to board displays. Publishing is
// best-effort: a broker failure is logged and counted, never returned.
type EventService struct {
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewEventService(broker messaging.Broker, channel string, m *metrics.Metrics, logger zerolog.Logger) *EventService {
	return &EventService{
		broker:  broker,
		channel: channel,
		metrics: m,
		logger:  logger.With().Str("component", "events").Logger(),
	}
}

// Publish sends evt on the board channel with its own deadline, detached
// from ctx cancellation.
func (s *EventService) Publish(ctx context.Context, evt model.WaitTimeEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.broker.Publish(ctx, s.channel, evt)
	s.metrics.ObserveEvent(evt.Type, err)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("type", evt.Type).
			Int64("provider_id", evt.ProviderID).
			Msg("failed to publish wait-time event")
	}
}

// Subscribe decodes events from the board channel until ctx is done.
// Malformed payloads are skipped.
func (s *EventService) Subscribe(ctx context.Context) (<-chan model.WaitTimeEvent, error) {
	raw, err := s.broker.Subscribe(ctx, s.channel)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to wait-time events: %w", err)
	}

	events := make(chan model.WaitTimeEvent)
	go func() {
		defer close(events)
		for payload := range raw {
			var evt model.WaitTimeEvent
			if err := json.Unmarshal(payload, &evt); err != nil {
				s.logger.Warn().Err(err).Msg("dropping malformed wait-time event")
				continue
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// NewWaitTimeEvent stamps an event for provider id.
func NewWaitTimeEvent(eventType string, providerID int64, waitTime *int, at time.Time) model.WaitTimeEvent {
	return model.WaitTimeEvent{
		Type:       eventType,
		ProviderID: providerID,
		WaitTime:   waitTime,
		ChangedAt:  model.NewTimestamp(at),
	}
}
