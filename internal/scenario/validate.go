package scenario

import (
	"fmt"
	"strings"

	"scenario-admin/internal/models"
)

// Validate checks the draft before it is submitted. Required fields come first,
// then every emergency must fit inside the scenario duration.
func Validate(d *Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return models.NewValidationError("name", "Please enter a scenario name")
	}
	for i, s := range d.Stops {
		if strings.TrimSpace(s.Name) == "" {
			return models.NewValidationError(fmt.Sprintf("stops[%d].name", i), "Please enter names for all stops")
		}
	}
	total := d.TotalSeconds()
	for i, s := range d.Stops {
		for j, e := range s.Emergencies {
			if err := ValidateEmergency(e, total); err != nil {
				err.Field = fmt.Sprintf("stops[%d].emergencies[%d]", i, j)
				return err
			}
		}
	}
	return nil
}

// ValidateEmergency checks one emergency against the scenario total. The
// overrun check comes first; a zero-length emergency can still start too late.
func ValidateEmergency(e models.Emergency, total int) *models.ValidationError {
	if end := e.StartSecond + e.Seconds; end > total {
		return models.NewValidationError("emergency",
			"Emergency cannot exceed scenario duration. Total: %ds, Current: %ds", total, end)
	}
	if e.StartSecond >= total {
		return models.NewValidationError("emergency",
			"Interrupt time must be less than total duration (%ds)", total)
	}
	return nil
}
