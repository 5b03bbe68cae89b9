package scenario

import (
	"fmt"
	"strings"

	"scenario-admin/internal/models"
)

// Draft is the working copy of a scenario while it is being edited in the form.
type Draft struct {
	ID    string
	Name  string
	Theme models.Theme
	Stops []models.Stop
}

// DefaultStop is the blank stop appended by "add stop".
func DefaultStop() models.Stop {
	return models.Stop{
		TravelTimeToNextStop: DefaultTravel,
		StayTimeAtStop:       0,
		Emergencies:          []models.Emergency{},
	}
}

// NewDraft starts a scenario with three blank stops.
func NewDraft() *Draft {
	return &Draft{
		Theme: models.ThemeDark,
		Stops: []models.Stop{DefaultStop(), DefaultStop(), DefaultStop()},
	}
}

// DraftFromScenario maps a stored scenario into an editable draft.
func DraftFromScenario(s models.Scenario) *Draft {
	d := &Draft{
		ID:    s.ID,
		Name:  s.Name,
		Theme: models.ParseTheme(string(s.Theme)),
	}
	for i, stop := range s.Stops {
		name := stop.Name
		if name == "" {
			name = fmt.Sprintf("Stop %d", i+1)
		}
		travel := stop.TravelOr(DefaultTravel)
		if travel < MinTravelSeconds {
			travel = MinTravelSeconds
		}
		emergencies := make([]models.Emergency, 0, len(stop.Emergencies))
		emergencies = append(emergencies, stop.Emergencies...)
		d.Stops = append(d.Stops, models.Stop{
			Name:                 name,
			TravelTimeToNextStop: travel,
			StayTimeAtStop:       stop.StayTimeAtStop,
			Emergencies:          emergencies,
		})
	}
	if len(d.Stops) == 0 {
		d.Stops = []models.Stop{DefaultStop()}
	}
	return d
}

// IsEdit reports whether the draft belongs to an existing scenario.
func (d *Draft) IsEdit() bool {
	return d.ID != ""
}

// TotalSeconds of the draft as it stands.
func (d *Draft) TotalSeconds() int {
	return TotalSeconds(d.Stops)
}

// HasEmergency reports whether any stop already carries an emergency.
func (d *Draft) HasEmergency() bool {
	for _, s := range d.Stops {
		if len(s.Emergencies) > 0 {
			return true
		}
	}
	return false
}

// AddStop appends a blank stop.
func (d *Draft) AddStop() {
	d.Stops = append(d.Stops, DefaultStop())
}

// RemoveStop drops the stop at i. A scenario keeps at least one stop.
func (d *Draft) RemoveStop(i int) {
	if len(d.Stops) <= 1 || i < 0 || i >= len(d.Stops) {
		return
	}
	d.Stops = append(d.Stops[:i], d.Stops[i+1:]...)
}

// AddEmergency attaches a new emergency to stop i. Only one emergency is allowed
// per scenario.
func (d *Draft) AddEmergency(i int) {
	if i < 0 || i >= len(d.Stops) || d.HasEmergency() {
		return
	}
	d.Stops[i].Emergencies = append(d.Stops[i].Emergencies, models.Emergency{
		StartSecond: 0,
		Seconds:     MinEmergencySeconds,
	})
}

// RemoveEmergency drops emergency j of stop i.
func (d *Draft) RemoveEmergency(i, j int) {
	if i < 0 || i >= len(d.Stops) {
		return
	}
	ems := d.Stops[i].Emergencies
	if j < 0 || j >= len(ems) {
		return
	}
	d.Stops[i].Emergencies = append(ems[:j], ems[j+1:]...)
}

// Payload builds the request body sent to the backend.
func (d *Draft) Payload() models.ScenarioPayload {
	stops := make([]models.Stop, 0, len(d.Stops))
	for _, s := range d.Stops {
		ems := make([]models.Emergency, 0, len(s.Emergencies))
		ems = append(ems, s.Emergencies...)
		stop := models.Stop{
			Name:                 strings.TrimSpace(s.Name),
			TravelTimeToNextStop: s.TravelTimeToNextStop,
			StayTimeAtStop:       s.StayTimeAtStop,
			EmergencyEnabled:     len(ems) > 0,
			Emergencies:          ems,
		}
		if len(ems) > 0 {
			stop.EmergencySeconds = ems[0].Seconds
		}
		stops = append(stops, stop)
	}
	return models.ScenarioPayload{
		Name:  strings.TrimSpace(d.Name),
		Theme: models.ParseTheme(string(d.Theme)),
		Stops: stops,
	}
}
