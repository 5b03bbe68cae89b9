package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"scenario-admin/internal/models"
	"scenario-admin/internal/scenario"
)

// ErrNothingToExport is returned for an empty scenario list.
var ErrNothingToExport = errors.New("no scenarios available to export")

// Header is the first CSV row.
var Header = []string{
	"Scenario Name",
	"Stop Name",
	"Travel Time to Next Stop (sec)",
	"Stay Time at Stop (sec)",
	"Created By",
	"Created At",
	"Updated By",
	"Last Updated At",
	"Emergency Description",
	"Emergency Interrupt At (sec)",
	"Emergency Duration (sec)",
}

// Rows flattens scenarios into one row per emergency, or one row per stop when the
// stop has none. Scenario fields repeat on every row.
func Rows(scenarios []models.Scenario) [][]string {
	var rows [][]string
	for _, s := range scenarios {
		createdBy := orDefault(s.CreatedByName, "Unknown")
		updatedBy := orDefault(s.UpdatedByName, "Unknown")
		createdAt := scenario.FormatDate(s.CreatedAt)
		updatedAt := ""
		if !s.LastUpdatedAt.IsZero() {
			updatedAt = scenario.FormatDate(s.LastUpdatedAt)
		}

		for _, stop := range s.Stops {
			base := []string{
				s.Name,
				stop.Name,
				strconv.Itoa(stop.TravelTimeToNextStop),
				strconv.Itoa(stop.StayTimeAtStop),
				createdBy,
				createdAt,
				updatedBy,
				updatedAt,
			}
			if len(stop.Emergencies) == 0 {
				rows = append(rows, append(base, "", "", ""))
				continue
			}
			for _, e := range stop.Emergencies {
				row := append([]string(nil), base...)
				row = append(row, e.Text, strconv.Itoa(e.StartSecond), strconv.Itoa(e.Seconds))
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// WriteCSV writes the header and all rows to w.
func WriteCSV(w io.Writer, scenarios []models.Scenario) error {
	if len(scenarios) == 0 {
		return ErrNothingToExport
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(scenarios)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// Filename is the download name for an export taken at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("scenarios_export_%s.csv", now.Format("2006-01-02"))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
