package models

// Envelope is the common response shape of the backend API.
type Envelope struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message,omitempty"`
	Token            string     `json:"token,omitempty"`
	User             *User      `json:"user,omitempty"`
	Users            []User     `json:"users,omitempty"`
	Scenario         *Scenario  `json:"scenario,omitempty"`
	Scenarios        []Scenario `json:"scenarios,omitempty"`
	VideoRegenerated bool       `json:"videoRegenerated,omitempty"`
}

// SaveResult is what the backend reports after creating or updating a scenario.
type SaveResult struct {
	Scenario         Scenario
	VideoRegenerated bool
}
