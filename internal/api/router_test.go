package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-workers/internal/common/logger"
	"risk-workers/internal/history"
	"risk-workers/internal/models"
	"risk-workers/internal/risk"
)

const midpointBody = `{
	"healthFactors": {"exerciseFrequency": 50, "sleepHours": 7, "stressLevel": 50,
		"alcoholConsumption": 50, "smokingStatus": 50, "dietQuality": 50, "medicalHistory": []},
	"financialFactors": {"monthlyIncome": 50000, "monthlyExpenses": 30000, "savingsRate": 50,
		"debtRatio": 50, "investmentKnowledge": 50, "emergencyFund": true, "creditScore": 700},
	"scamVulnerabilityFactors": {"technicalLiteracy": 50, "onlineActivityFrequency": 50,
		"publicPersonalInfo": 50, "passwordHygiene": 50, "verificationHabits": 50, "pastIncidents": 0}
}`

type brokenRecorder struct{}

func (brokenRecorder) Record(context.Context, string, models.Prediction) (history.Receipt, error) {
	return history.Receipt{}, stderrors.New("redis: connection refused")
}

func (brokenRecorder) List(context.Context, string) ([]models.Prediction, error) {
	return nil, stderrors.New("redis: connection refused")
}

func newTestRouter(t *testing.T, recorder Recorder, checks map[string]Check) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewTestLogger(t)
	ph := NewPredictionHandler(recorder, nil, log)
	ph.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }

	return NewRouter(RouterConfig{
		ServiceName:       "risk-workers-test",
		AllowedOrigins:    []string{"*"},
		Logger:            log,
		PredictionHandler: ph,
		HealthHandler:     NewHealthHandler("test", checks),
	})
}

func memoryRecorder(t *testing.T) *history.Recorder {
	return history.NewRecorder(history.NewMemoryRepository(0), logger.NewTestLogger(t))
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPredict(t *testing.T) {
	r := newTestRouter(t, memoryRecorder(t), nil)

	rec := do(r, http.MethodPost, "/api/predict", midpointBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, risk.Scores{HealthRisk: 55, FinancialRisk: 0, ScamRisk: 55, OverallRisk: 36}, resp.Scores)
	assert.Equal(t, "2026-03-01T08:00:00Z", resp.Timestamp)
	assert.NotEmpty(t, resp.Explanation.ScamExplanation)
}

func TestPredict_InvalidInput(t *testing.T) {
	r := newTestRouter(t, memoryRecorder(t), nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"healthFactors":`, "(root)"},
		{"empty object", `{}`, "healthFactors"},
		{"out of range", `{"healthFactors":{"sleepHours":25}}`, "healthFactors.sleepHours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error   string            `json:"error"`
				Details []risk.FieldError `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid input", resp.Error)

			var fields []string
			for _, fe := range resp.Details {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestPredictions_SaveAndList(t *testing.T) {
	r := newTestRouter(t, memoryRecorder(t), nil)

	older := `{"userId":"user-1","prediction":{"id":"p-old","riskScores":{"overallRisk":20},"createdAt":"2026-01-01T00:00:00Z"}}`
	newer := `{"userId":"user-1","prediction":{"id":"p-new","riskScores":{"overallRisk":70},"createdAt":"2026-02-01T00:00:00Z"}}`

	for _, body := range []string{newer, older} {
		rec := do(r, http.MethodPost, "/api/predictions", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SavePredictionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Prediction saved", resp.Message)
		assert.Equal(t, "user-1", resp.Prediction.UserID)
	}

	rec := do(r, http.MethodGet, "/api/predictions?userId=user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list ListPredictionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Predictions, 2)
	assert.Equal(t, "p-new", list.Predictions[0].ID)
	assert.Equal(t, "p-old", list.Predictions[1].ID)

	rec = do(r, http.MethodGet, "/api/predictions?userId=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"count":0,"predictions":[]}`, rec.Body.String())
}

func TestPredictions_BadRequests(t *testing.T) {
	r := newTestRouter(t, memoryRecorder(t), nil)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/predictions", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/predictions", `{"userId":"u"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/predictions", `{"prediction":{}}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/predictions", `{"userId":"u","prediction":null}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/predictions", `not json`).Code)
}

func TestPredictions_StorageFailure(t *testing.T) {
	r := newTestRouter(t, brokenRecorder{}, nil)

	rec := do(r, http.MethodGet, "/api/predictions?userId=user-1", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Contains(t, resp.Message, "connection refused")

	rec = do(r, http.MethodPost, "/api/predictions", `{"userId":"u","prediction":{}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	healthy := newTestRouter(t, memoryRecorder(t), map[string]Check{
		"history": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, do(healthy, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(healthy, http.MethodGet, "/ready", "").Code)

	unhealthy := newTestRouter(t, memoryRecorder(t), map[string]Check{
		"history": func(context.Context) error { return nil },
		"zeebe":   func(context.Context) error { return stderrors.New("unavailable") },
	})
	rec := do(unhealthy, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"zeebe":"unavailable"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, memoryRecorder(t), nil)
	do(r, http.MethodPost, "/api/predict", midpointBody)

	rec := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "risk_assessments_total")
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("wildcard", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"*"}))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "http://client.test")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allow list", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"http://localhost:3000"}))
		r.OPTIONS("/api/predict", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logger.NewNoOpLogger()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := do(r, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
