package scenario

import (
	"strings"
	"time"

	"scenario-admin/internal/models"
)

// Filter keeps scenarios whose name contains query, case-insensitively.
func Filter(list []models.Scenario, query string) []models.Scenario {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]models.Scenario, 0, len(list))
	for _, s := range list {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the scenario with the given id.
func Find(list []models.Scenario, id string) (models.Scenario, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return models.Scenario{}, false
}

// Upsert replaces the scenario with the same ID, or prepends it when new.
func Upsert(list []models.Scenario, s models.Scenario) []models.Scenario {
	out := make([]models.Scenario, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if existing.ID == s.ID {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if replaced {
		return out
	}
	return append([]models.Scenario{s}, out...)
}

// Remove drops the scenario with the given id.
func Remove(list []models.Scenario, id string) []models.Scenario {
	out := make([]models.Scenario, 0, len(list))
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// FormatDate renders dd-mm-yyyy, or "N/A" for a missing date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02-01-2006")
}
