package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-workers/internal/models"
	"risk-workers/internal/risk"
)

type esRequest struct {
	Method string
	Path   string
	Body   []byte
}

// fakeES answers like a single Elasticsearch node and records every request.
func fakeES(t *testing.T, indexExists bool, indexStatus int) (*elasticsearch.Client, func() []esRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []esRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, esRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodHead:
			if indexExists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPut && r.URL.Path == "/risk-predictions":
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(indexStatus)
			_, _ = w.Write([]byte(`{"result":"created"}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return client, func() []esRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]esRequest(nil), requests...)
	}
}

func samplePrediction() models.Prediction {
	return models.Prediction{
		ID:         "pred-1",
		UserID:     "user-1",
		RiskScores: risk.Scores{HealthRisk: 80, FinancialRisk: 20, ScamRisk: 60, OverallRisk: 53},
		Explanation: risk.Explanation{
			HealthExplanation: []risk.FeatureImportance{
				{Feature: "Smoking Status", Direction: risk.DirectionPositive, Contribution: 12},
				{Feature: "Medical History", Direction: risk.DirectionPositive, Contribution: 15},
				{Feature: "Sleep Hours", Direction: risk.DirectionNegative, Contribution: 40},
			},
			FinancialExplanation: []risk.FeatureImportance{
				{Feature: "Debt Ratio", Direction: risk.DirectionNegative, Contribution: 3},
			},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewPredictionDocument(t *testing.T) {
	doc := NewPredictionDocument(samplePrediction())

	assert.Equal(t, "pred-1", doc.PredictionID)
	assert.Equal(t, "high", doc.OverallLevel)
	assert.Equal(t, "Medical History", doc.TopHealthRisk)
	assert.Empty(t, doc.TopFinanceRisk)
	assert.Empty(t, doc.TopScamRisk)
}

func TestPredictionIndexer_IndexPrediction(t *testing.T) {
	client, requests := fakeES(t, true, http.StatusCreated)
	indexer := NewPredictionIndexer(client, "risk-predictions")

	require.NoError(t, indexer.IndexPrediction(context.Background(), samplePrediction()))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/risk-predictions/_doc/pred-1", reqs[0].Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &doc))
	assert.Equal(t, "user-1", doc["userId"])
	assert.Equal(t, float64(53), doc["overallRisk"])
}

func TestPredictionIndexer_IndexErrorStatus(t *testing.T) {
	client, _ := fakeES(t, true, http.StatusServiceUnavailable)
	indexer := NewPredictionIndexer(client, "risk-predictions")

	err := indexer.IndexPrediction(context.Background(), samplePrediction())
	assert.Error(t, err)
}

func TestPredictionIndexer_EnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		client, requests := fakeES(t, false, http.StatusCreated)
		require.NoError(t, NewPredictionIndexer(client, "risk-predictions").EnsureIndex(context.Background()))

		reqs := requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, http.MethodHead, reqs[0].Method)
		assert.Equal(t, http.MethodPut, reqs[1].Method)
		assert.Contains(t, string(reqs[1].Body), `"overallLevel"`)
	})

	t.Run("leaves existing index alone", func(t *testing.T) {
		client, requests := fakeES(t, true, http.StatusCreated)
		require.NoError(t, NewPredictionIndexer(client, "risk-predictions").EnsureIndex(context.Background()))
		assert.Len(t, requests(), 1)
	})
}
