package hospitalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// Client fetches raw payloads from an upstream hospital backend. It does
// no normalization; the hospital provider adapters own the mapping into
// the canonical model.
type Client interface {
	// GetPatient fetches the nested patient record (multi-endpoint shape).
	GetPatient(ctx context.Context, patientID string) (*PatientRecord, error)

	// GetCurrentStats fetches department-wide statistics (multi-endpoint shape).
	GetCurrentStats(ctx context.Context) (*StatsRecord, error)

	// GetQueue fetches queue totals (multi-endpoint shape).
	GetQueue(ctx context.Context) (*QueueRecord, error)

	// GetFlatVisit fetches the flat visit record (single-endpoint shape).
	GetFlatVisit(ctx context.Context, patientID string) (*FlatVisitRecord, error)
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// PatientRecord is the raw multi-endpoint patient payload.
type PatientRecord struct {
	ID            string `json:"id"`
	ArrivalTime   string `json:"arrival_time"`
	TriageCategory *int  `json:"triage_category"`
	QueuePosition struct {
		Global   int `json:"global"`
		Category int `json:"category"`
	} `json:"queue_position"`
	Status struct {
		CurrentPhase   string `json:"current_phase"`
		Investigations struct {
			Labs    string `json:"labs"`
			Imaging string `json:"imaging"`
		} `json:"investigations"`
	} `json:"status"`
	TimeElapsed int `json:"time_elapsed"`
}

// StatsRecord is the raw multi-endpoint department statistics payload.
// Category keys arrive as strings ("1".."5").
type StatsRecord struct {
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
	AverageWaitTimes  map[string]int `json:"averageWaitTimes"`
}

// QueueRecord is the raw multi-endpoint queue payload.
type QueueRecord struct {
	WaitingCount    int             `json:"waitingCount"`
	LongestWaitTime int             `json:"longestWaitTime"`
	Patients        []PatientRecord `json:"patients"`
}

// FlatVisitRecord is the raw single-endpoint payload: one flat object
// carrying the patient record, queue position and per-category sequences.
type FlatVisitRecord struct {
	ArrivalTime         string `json:"arrivalTime"`
	ElapsedTime         int    `json:"elapsedTime"`
	Triage              string `json:"triage"`
	ExpectedTime        *int   `json:"expectedTime"`
	QueuePositionLocal  int    `json:"queuePositionLocal"`
	QueuePositionGlobal int    `json:"queuePositionGlobal"`
	QueueMax            int    `json:"queueMax"`
	AllPatients         int    `json:"allPatients"`
	CurrentPhase        string `json:"currentPhase"`
	Labs                string `json:"labs"`
	Imaging             string `json:"imaging"`

	// Fixed-length sequences indexed by category rank: index 0 is
	// category 1.
	ExpectedWaitTimesByCat []int `json:"expectedWaitTimesByCat"`
	PatientNumberByCat     []int `json:"patientNumberByCat"`
}

// NewClient creates a hospital API client for the given base URL.
func NewClient(baseURL string) *HTTPClient {
	trimmed := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetPatient fetches the nested patient record.
func (c *HTTPClient) GetPatient(ctx context.Context, patientID string) (*PatientRecord, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}
	endpoint := fmt.Sprintf("%s/patient/%s", c.baseURL, url.PathEscape(patientID))
	out := &PatientRecord{}
	if err := c.doJSON(ctx, "patient", endpoint, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCurrentStats fetches department-wide statistics.
func (c *HTTPClient) GetCurrentStats(ctx context.Context) (*StatsRecord, error) {
	out := &StatsRecord{}
	if err := c.doJSON(ctx, "stats", c.baseURL+"/stats/current", out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetQueue fetches queue totals.
func (c *HTTPClient) GetQueue(ctx context.Context) (*QueueRecord, error) {
	out := &QueueRecord{}
	if err := c.doJSON(ctx, "queue", c.baseURL+"/queue", out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlatVisit fetches the flat single-endpoint visit record.
func (c *HTTPClient) GetFlatVisit(ctx context.Context, patientID string) (*FlatVisitRecord, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}
	endpoint := fmt.Sprintf("%s/patient/%s", c.baseURL, url.PathEscape(patientID))
	out := &FlatVisitRecord{}
	if err := c.doJSON(ctx, "patient", endpoint, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, name, endpoint string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewExternalError("failed to build hospital api request", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		recordHospitalRequest(ctx, name, 0, time.Since(start), err)
		return apperrors.NewExternalError("hospital api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		recordHospitalRequest(ctx, name, resp.StatusCode, time.Since(start), nil)
		return apperrors.NewNotFoundError("no record for this patient")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		recordHospitalRequest(ctx, name, resp.StatusCode, time.Since(start), statusErr)
		return apperrors.NewExternalError(
			fmt.Sprintf("hospital api returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		recordHospitalRequest(ctx, name, resp.StatusCode, time.Since(start), err)
		return apperrors.NewExternalError("failed to decode hospital api response", err)
	}

	recordHospitalRequest(ctx, name, resp.StatusCode, time.Since(start), nil)
	return nil
}
