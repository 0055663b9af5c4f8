package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/carewatch/core/metrics"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/infra/mqtt"
)

func TestMQTTSinkPublishesState(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub, mqtt.Config{TopicPrefix: "ward7"})
	now := time.UnixMilli(1735776000000)
	require.NoError(t, sink.RecordTick(coremetrics.TickEvent{
		RunID: "r1", Tick: 3, Time: now,
		State: model.State{Oxygen: 11000.5, Beds: 20, Staff: 41},
	}))

	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ward7/state", sent[0].Topic)
	var got statePayload
	require.NoError(t, json.Unmarshal(sent[0].Payload, &got))
	assert.Equal(t, statePayload{RunID: "r1", Tick: 3, Timestamp: 1735776000000, Oxygen: 11000.5, Beds: 20, Staff: 41}, got)
}

func TestMQTTSinkPublishesForecast(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub, mqtt.Config{})
	require.NoError(t, sink.RecordForecast(coremetrics.ForecastEvent{
		RunID: "r1",
		Forecasts: []model.Forecast{
			{Metric: model.MetricStaff, Values: []float64{40, 40}},
		},
	}))
	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "carewatch/forecast", sent[0].Topic)
	var got forecastPayload
	require.NoError(t, json.Unmarshal(sent[0].Payload, &got))
	assert.Equal(t, []float64{40, 40}, got.Forecasts["staff"])
	assert.Equal(t, int64(0), got.Timestamp)

	require.NoError(t, sink.Close())
	assert.True(t, pub.Closed)
}

func TestMQTTSinkPublishError(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	pub.FailTopics["carewatch/state"] = true
	sink := NewMQTTSink(pub, mqtt.Config{})
	assert.Error(t, sink.RecordTick(coremetrics.TickEvent{}))
}
