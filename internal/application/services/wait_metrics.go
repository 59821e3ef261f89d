package services

import (
	"fmt"
	"time"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
)

// LoadLevel buckets how busy a triage category is relative to the whole
// department.
type LoadLevel string

const (
	LoadLevelLow      LoadLevel = "Low"
	LoadLevelModerate LoadLevel = "Moderate"
	LoadLevelHigh     LoadLevel = "High"
)

// Share-of-census thresholds separating the load levels, in percent.
const (
	loadModerateThreshold = 33
	loadHighThreshold     = 66
)

// CategoryLoad classifies how loaded one triage category is as its share
// of the total department census. A category absent from the breakdown
// counts as zero patients, and an empty department is Low by definition.
func CategoryLoad(stats entities.DepartmentStats, category int) LoadLevel {
	total := stats.TotalCensus()
	if total == 0 {
		return LoadLevelLow
	}
	share := stats.CategoryBreakdown[category] * 100 / total
	switch {
	case share < loadModerateThreshold:
		return LoadLevelLow
	case share < loadHighThreshold:
		return LoadLevelModerate
	default:
		return LoadLevelHigh
	}
}

// RemainingWait returns the minutes still to wait, clamped at zero once
// the elapsed time has overrun the estimate.
func RemainingWait(expectedMinutes, elapsedMinutes int) int {
	remaining := expectedMinutes - elapsedMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns how far through the expected wait the patient is, as
// a percentage capped at 100. An unknown or zero estimate yields 0
// rather than a division by zero.
func Progress(expectedMinutes, elapsedMinutes int) int {
	if expectedMinutes <= 0 {
		return 0
	}
	progress := elapsedMinutes * 100 / expectedMinutes
	if progress > 100 {
		return 100
	}
	return progress
}

// EstimatedCompletion projects the clock time at which the remaining
// wait elapses, rendered as hh:mm in the local timezone of now.
func EstimatedCompletion(now time.Time, remainingMinutes int) string {
	return now.Add(time.Duration(remainingMinutes) * time.Minute).Format("15:04")
}

// FormatWait renders a minute count as "XhYm", dropping the hour part
// when it is zero.
func FormatWait(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
