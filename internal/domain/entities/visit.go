package entities

import (
	"time"
)

// InvestigationState tracks a lab or imaging order for the visit.
type InvestigationState string

const (
	InvestigationNone     InvestigationState = "none"
	InvestigationPending  InvestigationState = "pending"
	InvestigationReported InvestigationState = "reported"
)

// ParseInvestigationState maps a raw investigation string to a known
// state, defaulting to "none" for absent or unrecognized values.
func ParseInvestigationState(raw string) InvestigationState {
	switch InvestigationState(raw) {
	case InvestigationPending:
		return InvestigationPending
	case InvestigationReported:
		return InvestigationReported
	default:
		return InvestigationNone
	}
}

// TriageCategoryUnknown marks a snapshot whose triage category was absent
// or out of the 1..5 range upstream.
const TriageCategoryUnknown = 0

// Investigations holds the independent lab and imaging sub-statuses.
type Investigations struct {
	Labs    InvestigationState `json:"labs"`
	Imaging InvestigationState `json:"imaging"`
}

// QueuePosition is the patient's place in the department queue, both
// overall and within their triage category. Positions are 1-based.
type QueuePosition struct {
	Global   int `json:"global"`
	Category int `json:"category"`
}

// PatientSnapshot is the canonical view of one patient's current state.
// It is replaced wholesale on every successful poll; fields are never
// patched individually.
type PatientSnapshot struct {
	ID          string    `json:"id"`
	ArrivalTime time.Time `json:"arrival_time"`

	// TriageCategory is 1..5 (1 = most severe) or TriageCategoryUnknown.
	TriageCategory int `json:"triage_category"`

	CurrentPhase   Phase          `json:"current_phase"`
	Investigations Investigations `json:"investigations"`
	QueuePosition  QueuePosition  `json:"queue_position"`

	TimeElapsedMinutes int `json:"time_elapsed_minutes"`

	// ExpectedWaitMinutes is nil when the upstream did not report an
	// estimate. A zero estimate is only ever an explicit upstream zero.
	ExpectedWaitMinutes *int `json:"expected_wait_minutes,omitempty"`
}

// KnownTriageCategory reports whether the snapshot carries a usable
// triage category.
func (p *PatientSnapshot) KnownTriageCategory() bool {
	return p.TriageCategory >= 1 && p.TriageCategory <= 5
}

// DepartmentStats is the department-wide aggregate fetched alongside the
// patient record. Map keys are triage categories 1..5.
type DepartmentStats struct {
	CategoryBreakdown  map[int]int `json:"category_breakdown"`
	AverageWaitMinutes map[int]int `json:"average_wait_minutes"`
}

// TotalCensus returns the number of active patients across all categories.
func (s *DepartmentStats) TotalCensus() int {
	total := 0
	for _, count := range s.CategoryBreakdown {
		total += count
	}
	return total
}

// QueueSnapshot summarizes the department queue.
type QueueSnapshot struct {
	WaitingCount       int `json:"waiting_count"`
	LongestWaitMinutes int `json:"longest_wait_minutes"`
}

// VisitSnapshot bundles everything one poll tick produces. A tick either
// yields a complete VisitSnapshot or nothing; consumers never see fields
// from different backend responses mixed within one snapshot.
type VisitSnapshot struct {
	Patient   PatientSnapshot `json:"patient"`
	Stats     DepartmentStats `json:"stats"`
	Queue     QueueSnapshot   `json:"queue"`
	FetchedAt time.Time       `json:"fetched_at"`
}
