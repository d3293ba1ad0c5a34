package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/pkg/metrics"
)

type fakeBroker struct {
	published  []interface{}
	channel    string
	publishErr error
	feed       chan []byte
}

func (f *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	f.channel = channel
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, channel string) (<-chan []byte, error) {
	f.channel = channel
	return f.feed, nil
}

func (f *fakeBroker) Close() error { return nil }

func TestPublish(t *testing.T) {
	broker := &fakeBroker{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewEventService(broker, "board", m, zerolog.Nop())

	wait := 15
	svc.Publish(context.Background(), NewWaitTimeEvent(model.EventWaitTimeSet, 3, &wait, time.Now()))

	require.Len(t, broker.published, 1)
	assert.Equal(t, "board", broker.channel)
	evt := broker.published[0].(model.WaitTimeEvent)
	assert.Equal(t, int64(3), evt.ProviderID)
	assert.Equal(t, 15, *evt.WaitTime)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues(model.EventWaitTimeSet)))
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	broker := &fakeBroker{publishErr: errors.New("breaker open")}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewEventService(broker, "board", m, zerolog.Nop())

	svc.Publish(context.Background(), NewWaitTimeEvent(model.EventWaitTimeCleared, 3, nil, time.Now()))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsFailed.WithLabelValues(model.EventWaitTimeCleared)))
}

func TestPublishSurvivesCanceledRequest(t *testing.T) {
	broker := &fakeBroker{}
	svc := NewEventService(broker, "board", nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Publish(ctx, NewWaitTimeEvent(model.EventProviderRemoved, 1, nil, time.Now()))

	assert.Len(t, broker.published, 1)
}

func TestSubscribeDecodesAndSkipsMalformed(t *testing.T) {
	broker := &fakeBroker{feed: make(chan []byte, 3)}
	svc := NewEventService(broker, "board", nil, zerolog.Nop())

	wait := 20
	good, err := json.Marshal(NewWaitTimeEvent(model.EventWaitTimeSet, 9, &wait, time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)))
	require.NoError(t, err)

	broker.feed <- []byte("not json")
	broker.feed <- good
	close(broker.feed)

	events, err := svc.Subscribe(context.Background())
	require.NoError(t, err)

	var got []model.WaitTimeEvent
	for evt := range events {
		got = append(got, evt)
	}

	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ProviderID)
	assert.Equal(t, 20, *got[0].WaitTime)
	assert.Equal(t, "2024-05-01 09:30:00", got[0].ChangedAt.Format(model.TimestampLayout))
}
