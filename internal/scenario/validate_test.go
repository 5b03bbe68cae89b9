package scenario

import (
	"errors"
	"testing"

	"scenario-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() *Draft {
	return &Draft{
		Name:  "Route",
		Theme: models.ThemeDark,
		Stops: []models.Stop{
			{Name: "A", TravelTimeToNextStop: 30, StayTimeAtStop: 10},
			{Name: "B", TravelTimeToNextStop: 30},
		},
	}
}

func TestValidateRequiresNames(t *testing.T) {
	d := validDraft()
	d.Name = "   "
	err := Validate(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.Equal(t, "Please enter a scenario name", err.Error())

	d = validDraft()
	d.Stops[1].Name = ""
	err = Validate(d)
	require.Error(t, err)
	assert.Equal(t, "Please enter names for all stops", err.Error())

	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "stops[1].name", ve.Field)
}

func TestValidateEmergencyBounds(t *testing.T) {
	d := validDraft()
	// total = 30 + 10 + 10 (emergency) = 50
	d.Stops[0].Emergencies = []models.Emergency{{Text: "Alarm", StartSecond: 40, Seconds: 10}}
	assert.NoError(t, Validate(d))

	d.Stops[0].Emergencies[0].StartSecond = 41
	err := Validate(d)
	require.Error(t, err)
	assert.Equal(t, "Emergency cannot exceed scenario duration. Total: 50s, Current: 51s", err.Error())

	// Starting at the very end still reports the overrun first.
	d.Stops[0].Emergencies[0].StartSecond = 50
	err = Validate(d)
	require.Error(t, err)
	assert.Equal(t, "Emergency cannot exceed scenario duration. Total: 50s, Current: 60s", err.Error())
}

func TestValidateEmergencyStartPastEnd(t *testing.T) {
	err := ValidateEmergency(models.Emergency{StartSecond: 50, Seconds: 10}, 50)
	require.NotNil(t, err)
	assert.Equal(t, "Emergency cannot exceed scenario duration. Total: 50s, Current: 60s", err.Message)

	// Only a zero-length emergency reaches the start check.
	err = ValidateEmergency(models.Emergency{StartSecond: 50}, 50)
	require.NotNil(t, err)
	assert.Equal(t, "Interrupt time must be less than total duration (50s)", err.Message)

	assert.Nil(t, ValidateEmergency(models.Emergency{StartSecond: 49, Seconds: 1}, 50))
}
