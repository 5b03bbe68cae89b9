package web

import (
	"scenario-admin/internal/models"
	"scenario-admin/internal/scenario"
)

// Flash is a one-shot banner shown above the page content.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Flash types, also used as CSS modifiers.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// ScenarioRow is a scenario prepared for the dashboard table.
type ScenarioRow struct {
	models.Scenario
	TotalSeconds int
	CreatedBy    string
	UpdatedBy    string
}

// ScenarioRows converts scenarios into table rows, keeping order.
func ScenarioRows(list []models.Scenario) []ScenarioRow {
	rows := make([]ScenarioRow, 0, len(list))
	for _, s := range list {
		createdBy := s.CreatedByName
		if createdBy == "" {
			createdBy = "Unknown"
		}
		rows = append(rows, ScenarioRow{
			Scenario:     s,
			TotalSeconds: scenario.TotalSeconds(s.Stops),
			CreatedBy:    createdBy,
			UpdatedBy:    s.UpdatedByName,
		})
	}
	return rows
}
