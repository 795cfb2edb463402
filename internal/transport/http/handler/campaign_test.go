package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/transport/http/handler"
)

type fakeTriggers struct {
	runNowResult bool
	addErr       error
	removeErr    error
	updateErr    error

	calls []string
}

func (f *fakeTriggers) RunNow(id string) bool {
	f.calls = append(f.calls, "run-now "+id)
	return f.runNowResult
}

func (f *fakeTriggers) AddJob(_ context.Context, id string) error {
	f.calls = append(f.calls, "add "+id)
	return f.addErr
}

func (f *fakeTriggers) RemoveJob(_ context.Context, id string) error {
	f.calls = append(f.calls, "remove "+id)
	return f.removeErr
}

func (f *fakeTriggers) UpdateJob(_ context.Context, id string) error {
	f.calls = append(f.calls, "update "+id)
	return f.updateErr
}

type fakeResults struct {
	summaries []*domain.RunSummary
	err       error
	gotLimit  int
}

func (f *fakeResults) SaveApplication(context.Context, *domain.ApplicationResult) error { return nil }
func (f *fakeResults) SaveRunSummary(context.Context, *domain.RunSummary) error         { return nil }

func (f *fakeResults) ListRecentSummaries(_ context.Context, _ string, limit int) ([]*domain.RunSummary, error) {
	f.gotLimit = limit
	return f.summaries, f.err
}

func newTestRouter(triggers *fakeTriggers, results *fakeResults) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewCampaignHandler(triggers, results, slog.Default())

	r := gin.New()
	r.POST("/campaigns/:id/run-now", h.RunNow)
	r.POST("/campaigns/:id/trigger", h.AddTrigger)
	r.DELETE("/campaigns/:id/trigger", h.RemoveTrigger)
	r.PUT("/campaigns/:id/trigger", h.UpdateTrigger)
	r.GET("/campaigns/:id/summaries", h.ListSummaries)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json response %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestRunNow_AcknowledgesQueueing(t *testing.T) {
	triggers := &fakeTriggers{runNowResult: true}
	r := newTestRouter(triggers, &fakeResults{})

	w, body := doRequest(t, r, http.MethodPost, "/campaigns/camp-1/run-now")

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if body["queued"] != true {
		t.Errorf("body = %v", body)
	}
	if len(triggers.calls) != 1 || triggers.calls[0] != "run-now camp-1" {
		t.Errorf("calls = %v", triggers.calls)
	}
}

func TestRunNow_AlreadyQueued(t *testing.T) {
	r := newTestRouter(&fakeTriggers{runNowResult: false}, &fakeResults{})

	w, body := doRequest(t, r, http.MethodPost, "/campaigns/camp-1/run-now")

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if body["queued"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestTriggerEndpoints_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown campaign", domain.ErrCampaignNotFound, http.StatusNotFound},
		{"invalid schedule", domain.ErrInvalidSchedule, http.StatusBadRequest},
		{"storage failure", errors.New("pg down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeTriggers{addErr: tt.err}, &fakeResults{})

			w, body := doRequest(t, r, http.MethodPost, "/campaigns/camp-1/trigger")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if body["error"] == nil || body["error"] == "" {
				t.Error("error body missing")
			}
			// Raw storage errors must not leak to the client.
			if tt.wantStatus == http.StatusInternalServerError && body["error"] == "pg down" {
				t.Error("raw error leaked through the API boundary")
			}
		})
	}
}

func TestUpdateTrigger_StructuredAck(t *testing.T) {
	triggers := &fakeTriggers{}
	r := newTestRouter(triggers, &fakeResults{})

	w, body := doRequest(t, r, http.MethodPut, "/campaigns/camp-1/trigger")

	if w.Code != http.StatusOK || body["updated"] != true {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
	if len(triggers.calls) != 1 || triggers.calls[0] != "update camp-1" {
		t.Errorf("calls = %v", triggers.calls)
	}
}

func TestListSummaries(t *testing.T) {
	now := time.Now()
	results := &fakeResults{
		summaries: []*domain.RunSummary{
			{ID: "s1", CampaignID: "camp-1", Found: 5, Applied: 3, Failed: 2, StartedAt: now, EndedAt: now},
		},
	}
	r := newTestRouter(&fakeTriggers{}, results)

	w, body := doRequest(t, r, http.MethodGet, "/campaigns/camp-1/summaries?limit=5")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if results.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", results.gotLimit)
	}
	items, ok := body["summaries"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("summaries = %v", body["summaries"])
	}
	first := items[0].(map[string]any)
	if first["applied"] != float64(3) {
		t.Errorf("applied = %v", first["applied"])
	}
}

func TestListSummaries_DefaultsLimit(t *testing.T) {
	results := &fakeResults{}
	r := newTestRouter(&fakeTriggers{}, results)

	w, _ := doRequest(t, r, http.MethodGet, "/campaigns/camp-1/summaries")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if results.gotLimit != 20 {
		t.Errorf("limit = %d, want default 20", results.gotLimit)
	}
}
