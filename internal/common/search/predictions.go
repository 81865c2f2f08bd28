package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"risk-workers/internal/models"
	"risk-workers/internal/risk"
)

var predictionMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"predictionId":   map[string]interface{}{"type": "keyword"},
			"userId":         map[string]interface{}{"type": "keyword"},
			"healthRisk":     map[string]interface{}{"type": "integer"},
			"financialRisk":  map[string]interface{}{"type": "integer"},
			"scamRisk":       map[string]interface{}{"type": "integer"},
			"overallRisk":    map[string]interface{}{"type": "integer"},
			"overallLevel":   map[string]interface{}{"type": "keyword"},
			"topHealthRisk":  map[string]interface{}{"type": "keyword"},
			"topFinanceRisk": map[string]interface{}{"type": "keyword"},
			"topScamRisk":    map[string]interface{}{"type": "keyword"},
			"createdAt":      map[string]interface{}{"type": "date"},
		},
	},
}

// PredictionDocument is the flattened analytics view of a stored prediction.
type PredictionDocument struct {
	PredictionID   string    `json:"predictionId"`
	UserID         string    `json:"userId"`
	HealthRisk     int       `json:"healthRisk"`
	FinancialRisk  int       `json:"financialRisk"`
	ScamRisk       int       `json:"scamRisk"`
	OverallRisk    int       `json:"overallRisk"`
	OverallLevel   string    `json:"overallLevel"`
	TopHealthRisk  string    `json:"topHealthRisk,omitempty"`
	TopFinanceRisk string    `json:"topFinanceRisk,omitempty"`
	TopScamRisk    string    `json:"topScamRisk,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewPredictionDocument(p models.Prediction) PredictionDocument {
	return PredictionDocument{
		PredictionID:   p.ID,
		UserID:         p.UserID,
		HealthRisk:     p.RiskScores.HealthRisk,
		FinancialRisk:  p.RiskScores.FinancialRisk,
		ScamRisk:       p.RiskScores.ScamRisk,
		OverallRisk:    p.RiskScores.OverallRisk,
		OverallLevel:   string(risk.LevelFor(p.RiskScores.OverallRisk)),
		TopHealthRisk:  topRiskFeature(p.Explanation.HealthExplanation),
		TopFinanceRisk: topRiskFeature(p.Explanation.FinancialExplanation),
		TopScamRisk:    topRiskFeature(p.Explanation.ScamExplanation),
		CreatedAt:      p.CreatedAt,
	}
}

// topRiskFeature picks the risk-increasing feature with the largest contribution.
// Ties go to the earlier feature.
func topRiskFeature(fis []risk.FeatureImportance) string {
	best := ""
	bestContribution := 0.0
	for _, fi := range fis {
		if fi.Direction != risk.DirectionPositive {
			continue
		}
		if best == "" || fi.Contribution > bestContribution {
			best = fi.Feature
			bestContribution = fi.Contribution
		}
	}
	return best
}

// PredictionIndexer writes predictions into a single Elasticsearch index, keyed
// by prediction ID so re-indexing is idempotent.
type PredictionIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewPredictionIndexer(client *elasticsearch.Client, index string) *PredictionIndexer {
	return &PredictionIndexer{client: client, index: index}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (i *PredictionIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	body, _ := json.Marshal(predictionMapping)
	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.String())
	}
	return nil
}

func (i *PredictionIndexer) IndexPrediction(ctx context.Context, p models.Prediction) error {
	body, err := json.Marshal(NewPredictionDocument(p))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index prediction %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index prediction %s: %s", p.ID, res.String())
	}
	return nil
}
