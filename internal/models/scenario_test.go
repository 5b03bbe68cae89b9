package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopMissingTravelSurvivesRoundTrip(t *testing.T) {
	var stops []Stop
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"A"},{"name":"B","travelTimeToNextStop":0},{"name":"C","travelTimeToNextStop":45}]`), &stops))
	require.Len(t, stops, 3)
	assert.Equal(t, 30, stops[0].TravelOr(30))
	assert.Equal(t, 0, stops[0].TravelTimeToNextStop)
	assert.Equal(t, 0, stops[1].TravelOr(30))
	assert.Equal(t, 45, stops[2].TravelOr(30))

	data, err := json.Marshal(stops)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw[0], "travelTimeToNextStop")
	assert.Contains(t, raw[1], "travelTimeToNextStop")

	var again []Stop
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, 30, again[0].TravelOr(30))
	assert.Equal(t, 0, again[1].TravelOr(30))
}

func TestStopBuiltInCodeAlwaysSendsTravel(t *testing.T) {
	data, err := json.Marshal(Stop{Name: "A"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"travelTimeToNextStop":0`)
}

func TestScenarioUnmarshalNormalises(t *testing.T) {
	var s Scenario
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x1","name":"Loop","videoStatus":"weird","createdAt":"","stops":[{"name":"A"}]}`), &s))
	assert.Equal(t, "x1", s.ID)
	assert.Equal(t, VideoStatusPending, s.VideoStatus)
	assert.True(t, s.CreatedAt.IsZero())
	require.Len(t, s.Stops, 1)
	assert.Equal(t, 30, s.Stops[0].TravelOr(30))
}
