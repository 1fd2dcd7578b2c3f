// Package heatmap projects the contribution timeline onto a fixed-size
// day-bucket grid anchored to today, with per-day counts and clamped
// intensity tiers.
package heatmap

import (
	"time"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
)

// Cell is one day bucket. Date uses the pipeline's local-date rule, so a
// cell's date compares equal to the CreatedDate of the contributions it
// counts; that equality is what cell-click filtering relies on.
type Cell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Grid is the rendered heatmap: columns of rows cells, oldest column
// first, plus the window total.
type Grid struct {
	Columns [][]Cell `json:"columns"`
	Total   int      `json:"total"`
}

// Level maps a day's count to its intensity tier. The scale is a fixed
// clamp, not relative to the busiest day, so the rendering is stable no
// matter how active the window is.
func Level(count int) int {
	if count >= constants.HeatmapMaxLevel {
		return constants.HeatmapMaxLevel
	}
	if count < 0 {
		return 0
	}
	return count
}

// Build produces the trailing-window grid for the given contributions.
// Every day in the window appears in exactly one cell; days with no
// contributions get an explicit zero cell.
func Build(contributions []model.Contribution, windowDays, rows int) Grid {
	return buildAt(time.Now(), contributions, windowDays, rows)
}

func buildAt(today time.Time, contributions []model.Contribution, windowDays, rows int) Grid {
	if windowDays <= 0 || rows <= 0 {
		return Grid{Columns: [][]Cell{}}
	}

	counts := make(map[string]int, len(contributions))
	for _, c := range contributions {
		counts[c.CreatedDate]++
	}

	// Walk backward from today for exactly windowDays days, emitting a
	// flat chronological sequence, oldest first.
	flat := make([]Cell, 0, windowDays)
	total := 0
	for i := windowDays - 1; i >= 0; i-- {
		date := normalize.LocalDate(today.AddDate(0, 0, -i))
		count := counts[date]
		total += count
		flat = append(flat, Cell{Date: date, Count: count, Level: Level(count)})
	}

	// Re-chunk column-major: weeks as columns, days as rows, oldest to
	// newest left to right. A window that does not divide evenly ends in
	// one short column.
	columns := make([][]Cell, 0, (windowDays+rows-1)/rows)
	for start := 0; start < len(flat); start += rows {
		end := start + rows
		if end > len(flat) {
			end = len(flat)
		}
		columns = append(columns, flat[start:end])
	}

	return Grid{Columns: columns, Total: total}
}
