package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitwell/edflow/backend/internal/api/handlers"
	"github.com/waitwell/edflow/backend/internal/application/services"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

type stubSharer struct {
	result     *services.ShareResult
	err        error
	lastEmails []string
}

func (s *stubSharer) Share(_ context.Context, _ string, emails []string) (*services.ShareResult, error) {
	s.lastEmails = emails
	return s.result, s.err
}

func TestShareHandler_ShareStatus_Success(t *testing.T) {
	sharer := &stubSharer{result: &services.ShareResult{
		Sent:   []string{"parent@example.com"},
		Failed: []string{},
	}}
	handler := handlers.NewShareHandler(sharer)

	body := `{"emails":["parent@example.com"]}`
	req := httptest.NewRequest("POST", "/api/patient/anon_1234/share", strings.NewReader(body))
	req.SetPathValue("id", "anon_1234")
	w := httptest.NewRecorder()

	handler.ShareStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent@example.com"}, sharer.lastEmails)

	var response services.ShareResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, []string{"parent@example.com"}, response.Sent)
	assert.Empty(t, response.Failed)
}

func TestShareHandler_ShareStatus_NoSnapshot(t *testing.T) {
	sharer := &stubSharer{err: apperrors.NewNotFoundError("no status available for this patient")}
	handler := handlers.NewShareHandler(sharer)

	body := `{"emails":["parent@example.com"]}`
	req := httptest.NewRequest("POST", "/api/patient/anon_1234/share", strings.NewReader(body))
	req.SetPathValue("id", "anon_1234")
	w := httptest.NewRecorder()

	handler.ShareStatus(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareHandler_ShareStatus_MissingPatientID(t *testing.T) {
	handler := handlers.NewShareHandler(&stubSharer{})

	req := httptest.NewRequest("POST", "/api/patient//share", strings.NewReader(`{"emails":[]}`))
	w := httptest.NewRecorder()

	handler.ShareStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
