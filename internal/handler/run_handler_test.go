package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/domain"
	"tallyflow/internal/handler"
	"tallyflow/internal/middleware"
	"tallyflow/internal/pipeline"
	"tallyflow/internal/service"
	"tallyflow/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRunRouter(svc service.RunService) *gin.Engine {
	h := handler.NewRunHandler(svc)
	r := gin.New()
	runs := r.Group("/api/v1/runs")
	{
		runs.POST("", h.Create)
		runs.GET("/:id", h.Get)
		runs.GET("/:id/artifacts", h.ListArtifacts)
	}
	r.GET("/api/v1/exports", h.ListExports)
	return r
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *handler.APIError `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCreateRun_Sync(t *testing.T) {
	svc := new(mocks.MockRunService)
	expected := pipeline.Request{
		Channel:    domain.ChannelAmazonMTR,
		GSTIN:      "06ABCDE1234F1Z5",
		Month:      "2025-08",
		ReportType: domain.ReportTypeSalesMTR,
		InputPath:  "/data/mtr.csv",
		Approver:   middleware.AnonymousApprover,
	}
	summary := &pipeline.Summary{Run: &domain.Run{ID: uuid.New(), Status: domain.RunStatusSuccess}}
	svc.On("StartRun", mock.Anything, expected).Return(summary, nil)

	w, env := doJSON(t, newRunRouter(svc), http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"sales_mtr","input_path":"/data/mtr.csv"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestCreateRun_Async(t *testing.T) {
	svc := new(mocks.MockRunService)
	runID := uuid.New()
	svc.On("StartRunAsync", mock.Anything, mock.Anything).Return(runID, nil)

	w, env := doJSON(t, newRunRouter(svc), http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"sales_mtr","input_path":"/data/mtr.csv","async":true}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, env.Success)
	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, runID.String(), data["run_id"])
	svc.AssertExpectations(t)
}

func TestCreateRun_InvalidMonth(t *testing.T) {
	svc := new(mocks.MockRunService)

	w, env := doJSON(t, newRunRouter(svc), http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-13","report_type":"sales_mtr","input_path":"/data/mtr.csv"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_MONTH", env.Error.Code)
	svc.AssertNotCalled(t, "StartRun")
}

func TestCreateRun_UnknownReportType(t *testing.T) {
	svc := new(mocks.MockRunService)

	w, env := doJSON(t, newRunRouter(svc), http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"mystery","input_path":"/data/x.csv"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNKNOWN_REPORT_TYPE", env.Error.Code)
}

func TestCreateRun_SellerInvoiceNeedsChannel(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := newRunRouter(svc)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"seller_invoice","input_path":"/data/fees.csv"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNKNOWN_REPORT_TYPE", env.Error.Code)

	summary := &pipeline.Summary{Run: &domain.Run{ID: uuid.New(), Status: domain.RunStatusSuccess}}
	svc.On("StartRun", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
		return req.Channel == domain.ChannelAmazonMTR && req.ReportType == domain.ReportTypeSellerInvoice
	})).Return(summary, nil)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/runs",
		`{"channel":"amazon_mtr","gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"seller_invoice","input_path":"/data/fees.csv"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestCreateRun_FailedRunCarriesSummary(t *testing.T) {
	svc := new(mocks.MockRunService)
	summary := &pipeline.Summary{
		Run:       &domain.Run{ID: uuid.New(), Status: domain.RunStatusFailed},
		ErrorKind: domain.KindUnresolvedMasterData,
	}
	svc.On("StartRun", mock.Anything, mock.Anything).Return(summary, domain.ErrUnresolvedMasterData)

	w, env := doJSON(t, newRunRouter(svc), http.MethodPost, "/api/v1/runs",
		`{"gstin":"06ABCDE1234F1Z5","month":"2025-08","report_type":"sales_mtr","input_path":"/data/mtr.csv"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNRESOLVED_MASTER_DATA", env.Error.Code)
	assert.NotEmpty(t, env.Data, "failed runs still return the summary")
}

func TestGetRun(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := newRunRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_RUN_ID", env.Error.Code)

	missing := uuid.New()
	svc.On("GetRun", mock.Anything, missing).Return(nil, domain.ErrNotFound)
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	run := &domain.Run{ID: uuid.New(), Status: domain.RunStatusSuccess}
	svc.On("GetRun", mock.Anything, run.ID).Return(run, nil)
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+run.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestListArtifacts(t *testing.T) {
	svc := new(mocks.MockRunService)
	runID := uuid.New()
	arts := []domain.ReportArtifact{{ID: uuid.New(), RunID: runID, Role: domain.RoleVoucher}}
	svc.On("ListArtifacts", mock.Anything, runID).Return(arts, nil)

	w, env := doJSON(t, newRunRouter(svc), http.MethodGet, "/api/v1/runs/"+runID.String()+"/artifacts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.ReportArtifact
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, domain.RoleVoucher, got[0].Role)
}

func TestListExports(t *testing.T) {
	svc := new(mocks.MockRunService)
	r := newRunRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/exports?gstin=06ABCDE1234F1Z5", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	view := &service.ExportsView{TallyExports: []domain.TallyExport{{ID: uuid.New()}}}
	svc.On("ListExports", mock.Anything, "06ABCDE1234F1Z5", "2025-08").Return(view, nil)
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/exports?gstin=06ABCDE1234F1Z5&month=2025-08", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}
