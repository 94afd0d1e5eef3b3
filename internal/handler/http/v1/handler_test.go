package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
	"github.com/shenikar/disaster_alert_system/internal/config"
	"github.com/shenikar/disaster_alert_system/internal/hub"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "test-api-key"

var operatorHeader = map[string]string{"X-API-Key": testAPIKey}

type testEnv struct {
	reports *mocks.MockReportService
	risk    *mocks.MockRiskService
	hub     *hub.Hub
	router  *gin.Engine
}

// newTestHandler создает Handler с мокированными сервисами и настоящим хабом
func newTestHandler(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	reportService := mocks.NewMockReportService(ctrl)
	riskService := mocks.NewMockRiskService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{APIKeys: []string{testAPIKey}}
	h := hub.NewHub(4, logger, metrics.NewMetricsForTesting())
	t.Cleanup(h.Close)

	handler := NewHandler(reportService, riskService, h, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return &testEnv{reports: reportService, risk: riskService, hub: h, router: router}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func ptr[T any](v T) *T { return &v }

func validCreateRequest() CreateReportRequest {
	return CreateReportRequest{
		ReporterName: "Ivan Petrov",
		Description:  "Smoke coming out of the warehouse roof",
		IncidentType: "fire-emergency",
		Urgency:      "immediate",
		Latitude:     ptr(55.75),
		Longitude:    ptr(37.61),
		Address:      "Tverskaya 1",
		WitnessCount: 3,
	}
}

func TestCreateReport_Success(t *testing.T) {
	env := newTestHandler(t)
	reportID := uuid.New()

	env.reports.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, r *models.IncidentReport) error {
			require.NotNil(t, r.Location)
			assert.Equal(t, 55.75, r.Location.Latitude)
			assert.Equal(t, "Tverskaya 1", r.Location.Address)
			r.ID = reportID
			r.Status = models.StatusPending
			r.Verified = true
			r.Priority = models.PriorityHigh
			return nil
		})

	w := makeRequest(env.router, http.MethodPost, "/api/v1/reports", jsonBody(t, validCreateRequest()))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, reportID, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "high", resp.Priority)
	assert.True(t, resp.Verified)
}

func TestCreateReport_BadInput(t *testing.T) {
	testCases := []struct {
		name    string
		body    func() io.Reader
		wantMsg string
	}{
		{
			name:    "malformed json",
			body:    func() io.Reader { return bytes.NewBufferString(`{"reporter_name": "x"`) },
			wantMsg: "invalid request body",
		},
		{
			name: "unknown incident type",
			body: func() io.Reader {
				r := validCreateRequest()
				r.IncidentType = "alien-invasion"
				return jsonBody(t, r)
			},
			wantMsg: "IncidentType",
		},
		{
			name: "latitude out of range",
			body: func() io.Reader {
				r := validCreateRequest()
				r.Latitude = ptr(91.0)
				return jsonBody(t, r)
			},
			wantMsg: "Latitude",
		},
		{
			name: "missing latitude",
			body: func() io.Reader {
				r := validCreateRequest()
				r.Latitude = nil
				return jsonBody(t, r)
			},
			wantMsg: "Latitude",
		},
		{
			name: "missing longitude",
			body: func() io.Reader {
				r := validCreateRequest()
				r.Longitude = nil
				return jsonBody(t, r)
			},
			wantMsg: "Longitude",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestHandler(t)
			env.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(env.router, http.MethodPost, "/api/v1/reports", tc.body())

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantMsg)
		})
	}
}

func TestCreateReport_ZeroCoordinate(t *testing.T) {
	env := newTestHandler(t)
	req := validCreateRequest()
	req.Latitude, req.Longitude = ptr(0.0), ptr(0.0)

	env.reports.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, r *models.IncidentReport) error {
			require.NotNil(t, r.Location)
			assert.Zero(t, r.Location.Latitude)
			return nil
		})

	w := makeRequest(env.router, http.MethodPost, "/api/v1/reports", jsonBody(t, req))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReport_ServiceError(t *testing.T) {
	env := newTestHandler(t)
	env.reports.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Return(fmt.Errorf("db down"))

	w := makeRequest(env.router, http.MethodPost, "/api/v1/reports", jsonBody(t, validCreateRequest()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestListReports(t *testing.T) {
	env := newTestHandler(t)
	reports := []*models.IncidentReport{
		{ID: uuid.New(), IncidentType: models.IncidentFlood, Status: models.StatusPending},
		{ID: uuid.New(), IncidentType: models.IncidentOther, Status: models.StatusResolved},
	}
	env.reports.EXPECT().ListReports(gomock.Any(), 2, 5, true).Return(reports, nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/reports?page=2&pageSize=5&verified=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, reports[1].ID, resp[1].ID)
}

func TestListReports_Defaults(t *testing.T) {
	env := newTestHandler(t)
	env.reports.EXPECT().ListReports(gomock.Any(), 1, 20, false).Return([]*models.IncidentReport{}, nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/reports", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetReport(t *testing.T) {
	id := uuid.New()
	testCases := []struct {
		name       string
		url        string
		setup      func(env *testEnv)
		wantStatus int
	}{
		{
			name: "found with notes",
			url:  "/api/v1/reports/" + id.String(),
			setup: func(env *testEnv) {
				env.reports.EXPECT().GetReport(gomock.Any(), id).Return(&models.IncidentReport{
					ID:    id,
					Notes: []models.ReportNote{{ID: 1, Author: "op", Text: "crew sent", CreatedAt: time.Now()}},
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			url:  "/api/v1/reports/" + id.String(),
			setup: func(env *testEnv) {
				env.reports.EXPECT().GetReport(gomock.Any(), id).
					Return(nil, fmt.Errorf("service: %w", models.ErrReportNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid id",
			url:        "/api/v1/reports/not-a-uuid",
			setup:      func(env *testEnv) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestHandler(t)
			tc.setup(env)

			w := makeRequest(env.router, http.MethodGet, tc.url, nil)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), "crew sent")
			}
		})
	}
}

func TestOperatorRoutes_RequireAPIKey(t *testing.T) {
	env := newTestHandler(t)
	id := uuid.New().String()

	routes := []struct{ method, url string }{
		{http.MethodPatch, "/api/v1/reports/" + id + "/status"},
		{http.MethodPost, "/api/v1/reports/" + id + "/notes"},
		{http.MethodPatch, "/api/v1/reports/" + id + "/verification"},
		{http.MethodGet, "/api/v1/stats"},
	}
	for _, r := range routes {
		w := makeRequest(env.router, r.method, r.url, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.url)

		w = makeRequest(env.router, r.method, r.url, nil, map[string]string{"X-API-Key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.url)
	}
}

func TestUpdateStatus(t *testing.T) {
	id := uuid.New()
	testCases := []struct {
		name       string
		body       string
		setup      func(env *testEnv)
		wantStatus int
	}{
		{
			name: "forward move",
			body: `{"status":"investigating"}`,
			setup: func(env *testEnv) {
				env.reports.EXPECT().UpdateStatus(gomock.Any(), id, models.StatusInvestigating, false).
					Return(&models.IncidentReport{ID: id, Status: models.StatusInvestigating}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "backward move rejected",
			body: `{"status":"pending"}`,
			setup: func(env *testEnv) {
				env.reports.EXPECT().UpdateStatus(gomock.Any(), id, models.StatusPending, false).
					Return(nil, fmt.Errorf("service: %w", models.ErrInvalidStatusTransition))
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "backward move with override",
			body: `{"status":"pending","override":true}`,
			setup: func(env *testEnv) {
				env.reports.EXPECT().UpdateStatus(gomock.Any(), id, models.StatusPending, true).
					Return(&models.IncidentReport{ID: id, Status: models.StatusPending}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown status",
			body:       `{"status":"closed"}`,
			setup:      func(env *testEnv) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestHandler(t)
			tc.setup(env)

			w := makeRequest(env.router, http.MethodPatch, "/api/v1/reports/"+id.String()+"/status",
				bytes.NewBufferString(tc.body), operatorHeader)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestAddNote(t *testing.T) {
	env := newTestHandler(t)
	id := uuid.New()
	env.reports.EXPECT().AddNote(gomock.Any(), id, "dispatcher", "crew on site").
		Return(&models.IncidentReport{ID: id, Notes: []models.ReportNote{{ID: 7, Author: "dispatcher", Text: "crew on site"}}}, nil)

	w := makeRequest(env.router, http.MethodPost, "/api/v1/reports/"+id.String()+"/notes",
		jsonBody(t, AddNoteRequest{Author: "dispatcher", Text: "crew on site"}), map[string]string{"Authorization": "Bearer " + testAPIKey})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, int64(7), resp.Notes[0].ID)
}

func TestAddNote_EmptyText(t *testing.T) {
	env := newTestHandler(t)
	env.reports.EXPECT().AddNote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(env.router, http.MethodPost, "/api/v1/reports/"+uuid.NewString()+"/notes",
		bytes.NewBufferString(`{"author":"op","text":""}`), operatorHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverrideVerification(t *testing.T) {
	env := newTestHandler(t)
	id := uuid.New()
	env.reports.EXPECT().OverrideVerification(gomock.Any(), id, false, models.PriorityLow).
		Return(&models.IncidentReport{ID: id, Verified: false, Priority: models.PriorityLow}, nil)

	w := makeRequest(env.router, http.MethodPatch, "/api/v1/reports/"+id.String()+"/verification",
		bytes.NewBufferString(`{"verified":false,"priority":"low"}`), operatorHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"priority":"low"`)
}

func TestOverrideVerification_MissingVerified(t *testing.T) {
	env := newTestHandler(t)
	env.reports.EXPECT().OverrideVerification(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(env.router, http.MethodPatch, "/api/v1/reports/"+uuid.NewString()+"/verification",
		bytes.NewBufferString(`{"priority":"high"}`), operatorHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	env := newTestHandler(t)
	stats := &models.ReportStats{
		Total:             10,
		ByStatus:          map[models.ReportStatus]int{models.StatusPending: 4},
		Last24Hours:       3,
		WeeklyTrendPct:    50,
		ActiveEmergencies: 2,
	}
	env.reports.EXPECT().GetStats(gomock.Any()).Return(stats, nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/stats", nil, operatorHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ReportStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, *stats, resp)
}

func TestScoreRisk(t *testing.T) {
	env := newTestHandler(t)
	assessment := &models.RiskAssessment{
		Latitude:       0,
		Longitude:      0,
		AggregateScore: 42,
		Zone:           models.ZoneModerate,
	}
	// Нулевая координата допустима
	env.risk.EXPECT().Score(gomock.Any(), 0.0, 0.0).Return(assessment, nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/risk?lat=0&lng=0", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"aggregate_score":42`)
}

func TestScoreRisk_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		url        string
		setup      func(env *testEnv)
		wantStatus int
	}{
		{name: "missing lng", url: "/api/v1/risk?lat=10", setup: func(env *testEnv) {}, wantStatus: http.StatusBadRequest},
		{name: "lat out of range", url: "/api/v1/risk?lat=100&lng=10", setup: func(env *testEnv) {}, wantStatus: http.StatusBadRequest},
		{name: "not a number", url: "/api/v1/risk?lat=abc&lng=10", setup: func(env *testEnv) {}, wantStatus: http.StatusBadRequest},
		{
			name: "history unavailable",
			url:  "/api/v1/risk?lat=10&lng=10",
			setup: func(env *testEnv) {
				env.risk.EXPECT().Score(gomock.Any(), 10.0, 10.0).
					Return(nil, fmt.Errorf("risk: %w", models.ErrHistoryUnavailable))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestHandler(t)
			tc.setup(env)

			w := makeRequest(env.router, http.MethodGet, tc.url, nil)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func sampleGrid() []models.GridCell {
	return []models.GridCell{
		{
			Row: 0, Col: 0,
			Bounds:     models.BBox{MinLat: 9, MinLng: 9, MaxLat: 10, MaxLng: 10},
			Assessment: models.RiskAssessment{Latitude: 9.5, Longitude: 9.5, AggregateScore: 10, Zone: models.ZoneLow},
		},
		{
			Row: 0, Col: 1,
			Bounds:     models.BBox{MinLat: 9, MinLng: 10, MaxLat: 10, MaxLng: 11},
			Assessment: models.RiskAssessment{Latitude: 9.5, Longitude: 10.5, AggregateScore: 80, Zone: models.ZoneCritical},
		},
	}
}

func TestScoreGrid_JSON(t *testing.T) {
	env := newTestHandler(t)
	env.risk.EXPECT().ScoreGrid(gomock.Any(), 10.0, 10.0, 5.0, 2).Return(sampleGrid(), nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/risk/grid?lat=10&lng=10&radiusKm=5&gridSize=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var cells []models.GridCell
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cells))
	assert.Len(t, cells, 2)
}

func TestScoreGrid_GeoJSON(t *testing.T) {
	env := newTestHandler(t)
	env.risk.EXPECT().ScoreGrid(gomock.Any(), 10.0, 10.0, 5.0, 2).Return(sampleGrid(), nil)

	w := makeRequest(env.router, http.MethodGet, "/api/v1/risk/grid?lat=10&lng=10&radiusKm=5&gridSize=2&format=geojson", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 2)
}

func TestScoreGrid_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		url   string
		setup func(env *testEnv)
	}{
		{name: "zero grid size", url: "/api/v1/risk/grid?lat=10&lng=10&radiusKm=5&gridSize=0", setup: func(env *testEnv) {}},
		{name: "unknown format", url: "/api/v1/risk/grid?lat=10&lng=10&radiusKm=5&gridSize=2&format=kml", setup: func(env *testEnv) {}},
		{
			name: "grid too large",
			url:  "/api/v1/risk/grid?lat=10&lng=10&radiusKm=5&gridSize=500",
			setup: func(env *testEnv) {
				env.risk.EXPECT().ScoreGrid(gomock.Any(), 10.0, 10.0, 5.0, 500).
					Return(nil, fmt.Errorf("risk: %w", models.ErrInvalidGrid))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestHandler(t)
			tc.setup(env)

			w := makeRequest(env.router, http.MethodGet, tc.url, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestHandler(t)
	env.hub.Register()

	w := makeRequest(env.router, http.MethodGet, "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Hub.Connections)
}
