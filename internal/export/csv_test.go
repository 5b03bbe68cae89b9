package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"scenario-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsOnePerEmergencyOrStop(t *testing.T) {
	created := time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC)
	scenarios := []models.Scenario{
		{
			Name:          "Harbour, night",
			CreatedByName: "Ada",
			CreatedAt:     created,
			Stops: []models.Stop{
				{Name: "Pier", TravelTimeToNextStop: 30, StayTimeAtStop: 5, Emergencies: []models.Emergency{
					{Text: "Fog", StartSecond: 4, Seconds: 10},
					{Text: "Storm \"heavy\"", StartSecond: 20, Seconds: 15},
				}},
				{Name: "Lighthouse", TravelTimeToNextStop: 40},
			},
		},
	}

	rows := Rows(scenarios)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Harbour, night", "Pier", "30", "5", "Ada", "09-01-2025", "Unknown", "", "Fog", "4", "10"}, rows[0])
	assert.Equal(t, "Storm \"heavy\"", rows[1][8])
	assert.Equal(t, []string{"Harbour, night", "Lighthouse", "40", "0", "Ada", "09-01-2025", "Unknown", "", "", "", ""}, rows[2])
}

func TestRowsMissingDates(t *testing.T) {
	rows := Rows([]models.Scenario{{Name: "S", Stops: []models.Stop{{Name: "A"}}}})
	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0][5])
	assert.Equal(t, "", rows[0][7])
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.Scenario{{Name: "A, B", Stops: []models.Stop{{Name: "x"}}}})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, "A, B", records[1][0])
}

func TestWriteCSVEmpty(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "scenarios_export_2025-06-30.csv", Filename(time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)))
}
