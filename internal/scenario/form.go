package scenario

import (
	"net/url"
	"strconv"
	"strings"

	"scenario-admin/internal/models"
)

// Form field names shared with the scenario form template.
const (
	FieldName             = "name"
	FieldTheme            = "theme"
	FieldStopName         = "stop_name"
	FieldStopTravel       = "stop_travel"
	FieldStopStay         = "stop_stay"
	FieldEmergencyStop    = "emergency_stop"
	FieldEmergencyText    = "emergency_text"
	FieldEmergencyStart   = "emergency_start"
	FieldEmergencySeconds = "emergency_seconds"
	FieldAction           = "action"
)

// DraftFromForm rebuilds a draft from a posted scenario form. Stops are positional;
// emergencies reference their stop by index.
func DraftFromForm(id string, form url.Values) *Draft {
	d := &Draft{
		ID:    id,
		Name:  form.Get(FieldName),
		Theme: models.ParseTheme(form.Get(FieldTheme)),
	}

	names := form[FieldStopName]
	travels := form[FieldStopTravel]
	stays := form[FieldStopStay]
	for i, name := range names {
		d.Stops = append(d.Stops, models.Stop{
			Name:                 name,
			TravelTimeToNextStop: parseSeconds(at(travels, i), MinTravelSeconds, DefaultTravel),
			StayTimeAtStop:       parseSeconds(at(stays, i), MinStaySeconds, 0),
			Emergencies:          []models.Emergency{},
		})
	}
	if len(d.Stops) == 0 {
		d.Stops = []models.Stop{DefaultStop()}
	}

	stopRefs := form[FieldEmergencyStop]
	texts := form[FieldEmergencyText]
	starts := form[FieldEmergencyStart]
	secs := form[FieldEmergencySeconds]
	for i, ref := range stopRefs {
		idx, err := strconv.Atoi(strings.TrimSpace(ref))
		if err != nil || idx < 0 || idx >= len(d.Stops) {
			continue
		}
		d.Stops[idx].Emergencies = append(d.Stops[idx].Emergencies, models.Emergency{
			Text:        at(texts, i),
			StartSecond: parseSeconds(at(starts, i), MinEmergencyStart, 0),
			Seconds:     parseSeconds(at(secs, i), MinEmergencySeconds, MinEmergencySeconds),
		})
	}
	return d
}

// Action is a non-submit edit requested from the form.
type Action struct {
	Kind  string
	Stop  int
	Index int
}

// Action kinds. ActionNone re-renders the form unchanged.
const (
	ActionSave            = "save"
	ActionNone            = "none"
	ActionAddStop         = "add_stop"
	ActionRemoveStop      = "remove_stop"
	ActionAddEmergency    = "add_emergency"
	ActionRemoveEmergency = "remove_emergency"
)

// ParseAction decodes "kind[:stop[:index]]". Anything unrecognised is a save;
// a known kind with a missing or malformed index does nothing.
func ParseAction(raw string) Action {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	var want int
	switch parts[0] {
	case ActionAddStop:
		want = 0
	case ActionRemoveStop, ActionAddEmergency:
		want = 1
	case ActionRemoveEmergency:
		want = 2
	default:
		return Action{Kind: ActionSave}
	}
	if len(parts)-1 != want {
		return Action{Kind: ActionNone}
	}

	idx := make([]int, 2)
	for i, p := range parts[1:] {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return Action{Kind: ActionNone}
		}
		idx[i] = v
	}
	return Action{Kind: parts[0], Stop: idx[0], Index: idx[1]}
}

// Apply performs an edit action on the draft. It returns false for a save.
func (d *Draft) Apply(a Action) bool {
	switch a.Kind {
	case ActionNone:
	case ActionAddStop:
		d.AddStop()
	case ActionRemoveStop:
		d.RemoveStop(a.Stop)
	case ActionAddEmergency:
		d.AddEmergency(a.Stop)
	case ActionRemoveEmergency:
		d.RemoveEmergency(a.Stop, a.Index)
	default:
		return false
	}
	return true
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func parseSeconds(raw string, minValue, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClampSeconds(fallback, minValue)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return ClampSeconds(fallback, minValue)
	}
	return ClampSeconds(v, minValue)
}
