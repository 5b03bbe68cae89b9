package models

import (
	"encoding/json"
	"time"
)

// Theme of the rendered video.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme falls back to dark for anything unknown.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// VideoStatus of the generated scenario video.
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "pending"
	VideoStatusGenerating VideoStatus = "generating"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// Normalize maps unknown or empty statuses to pending.
func (s VideoStatus) Normalize() VideoStatus {
	switch s {
	case VideoStatusPending, VideoStatusGenerating, VideoStatusCompleted, VideoStatusFailed:
		return s
	default:
		return VideoStatusPending
	}
}

// Ready reports whether the video can be previewed or downloaded.
func (s VideoStatus) Ready() bool {
	return s == VideoStatusCompleted
}

// Emergency is a timed interrupt overlaid on the scenario video.
type Emergency struct {
	Text        string `json:"text"`
	StartSecond int    `json:"startSecond"`
	Seconds     int    `json:"seconds"`
}

// Stop is one waypoint of a scenario.
type Stop struct {
	Name                 string      `json:"name"`
	TravelTimeToNextStop int         `json:"travelTimeToNextStop"`
	StayTimeAtStop       int         `json:"stayTimeAtStop"`
	EmergencyEnabled     bool        `json:"emergencyEnabled"`
	EmergencySeconds     int         `json:"emergencySeconds"`
	Emergencies          []Emergency `json:"emergencies"`

	// travelUnset records that travelTimeToNextStop was absent on the wire.
	travelUnset bool
}

// TravelOr returns the stop's travel time, or fallback when the backend never
// sent one.
func (s Stop) TravelOr(fallback int) int {
	if s.travelUnset {
		return fallback
	}
	return s.TravelTimeToNextStop
}

// UnmarshalJSON remembers whether travelTimeToNextStop was present.
func (s *Stop) UnmarshalJSON(data []byte) error {
	type plain Stop
	var raw struct {
		plain
		Travel *int `json:"travelTimeToNextStop"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Stop(raw.plain)
	if raw.Travel == nil {
		s.travelUnset = true
	} else {
		s.TravelTimeToNextStop = *raw.Travel
	}
	return nil
}

// MarshalJSON leaves travelTimeToNextStop out again for stops that arrived
// without it, so cached copies keep the distinction.
func (s Stop) MarshalJSON() ([]byte, error) {
	type plain Stop
	if !s.travelUnset {
		return json.Marshal(plain(s))
	}
	return json.Marshal(struct {
		plain
		Travel *int `json:"travelTimeToNextStop,omitempty"`
	}{plain: plain(s)})
}

// Scenario is a named, ordered sequence of stops used to generate a video.
type Scenario struct {
	ID            string      `json:"_id"`
	Name          string      `json:"name"`
	Theme         Theme       `json:"theme"`
	Stops         []Stop      `json:"stops"`
	CreatedByName string      `json:"createdByName,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedByName string      `json:"updatedByName,omitempty"`
	LastUpdatedAt time.Time   `json:"lastUpdatedAt"`
	VideoStatus   VideoStatus `json:"videoStatus"`
}

// UnmarshalJSON accepts "_id" or "id" and tolerates null/empty timestamps.
func (s *Scenario) UnmarshalJSON(data []byte) error {
	type plain Scenario
	var raw struct {
		plain
		AltID         string  `json:"id"`
		CreatedAt     *string `json:"createdAt"`
		LastUpdatedAt *string `json:"lastUpdatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Scenario(raw.plain)
	if s.ID == "" {
		s.ID = raw.AltID
	}
	s.CreatedAt = parseTimestamp(raw.CreatedAt)
	s.LastUpdatedAt = parseTimestamp(raw.LastUpdatedAt)
	s.VideoStatus = s.VideoStatus.Normalize()
	return nil
}

func parseTimestamp(v *string) time.Time {
	if v == nil || *v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ScenarioPayload is the body of POST /scenario and PUT /scenario/:id.
type ScenarioPayload struct {
	Name  string `json:"name"`
	Theme Theme  `json:"theme"`
	Stops []Stop `json:"stops"`
}
